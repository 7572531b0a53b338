// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"dispatch-workers/pkg/registry"
)

const defaultPath = "configs/activity-registry.json"

func main() {
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)

	listPath := listCmd.String("path", defaultPath, "Path to registry file")

	updatePath := updateCmd.String("path", defaultPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, timeout, retries, ...)")
	value := updateCmd.String("value", "", "New value for the field")

	validatePath := validateCmd.String("path", defaultPath, "Path to registry file")

	exportPath := exportCmd.String("path", defaultPath, "Where to write the built-in registry")
	force := exportCmd.Bool("force", false, "Overwrite an existing registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		_ = listCmd.Parse(os.Args[2:])
		reg, err := registry.LoadOrDefault(*listPath)
		if err != nil {
			exit("failed to load registry: %v", err)
		}
		list(reg)

	case "update":
		_ = updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		reg, err := registry.LoadRegistry(*updatePath)
		if err != nil {
			exit("failed to load registry: %v", err)
		}
		if err := updateActivity(reg, *idUpdate, *field, *value); err != nil {
			exit("error updating activity: %v", err)
		}
		if err := reg.Save(*updatePath); err != nil {
			exit("error saving registry: %v", err)
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err != nil {
			exit("failed to load registry: %v", err)
		}
		if errs := reg.Validate(); len(errs) > 0 {
			fmt.Println("Registry validation failed:")
			for _, e := range errs {
				fmt.Printf("  - %v\n", e)
			}
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	case "export":
		_ = exportCmd.Parse(os.Args[2:])
		if _, err := os.Stat(*exportPath); err == nil && !*force {
			exit("%s already exists; pass -force to overwrite", *exportPath)
		}
		if err := registry.Default().Save(*exportPath); err != nil {
			exit("error exporting registry: %v", err)
		}
		fmt.Printf("Wrote built-in registry to %s\n", *exportPath)

	case "help":
		fallthrough
	default:
		help()
	}
}

func updateActivity(reg *registry.ActivityRegistry, id, field, value string) error {
	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		activity.ImplementationStatus = value
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "timeout":
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil || retries < 0 {
			return fmt.Errorf("invalid retries value: %q", value)
		}
		activity.Retries = retries
	case "errorCodes":
		activity.ErrorCodes = splitList(value)
	case "tags":
		activity.Tags = splitList(value)
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func list(reg *registry.ActivityRegistry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TASK TYPE\tID\tSTATUS\tTIMEOUT\tRETRIES")
	for _, a := range reg.Activities {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.TaskType, a.ID, a.ImplementationStatus, a.Timeout, a.Retries)
	}
	_ = w.Flush()
}

func exit(format string, args ...interface{}) {
	fmt.Printf("Error: "+format+"\n", args...)
	os.Exit(1)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  list      List the activities in the registry
  update    Update an existing activity's field
  validate  Validate the registry file
  export    Write the built-in allocation registry to a file
  help      Show this help message

Examples:
  registry-updater export -path configs/activity-registry.json
  registry-updater update -id allocation.employees.allocate -field timeout -value 45s
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
