// Package catalog builds the default task checklist for a job from its
// job type and building type.
package catalog

import (
	"strconv"
	"strings"

	"dispatch-workers/internal/models"
)

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Job types understood by the generator. Anything else only gets the
// base and closing blocks.
const (
	JobTypeDeepCleaning = "deep-cleaning"
	JobTypeRegular      = "regular"
	JobTypeOffice       = "office"

	BuildingApartment = "apartment"
	BuildingHouse     = "house"
)

var jobTypeAliases = map[string]string{
	"deep": JobTypeDeepCleaning,
}

type template struct {
	title        string
	description  string
	instructions string
	skills       []string
	minutes      int
	equipment    []string
	priority     string
}

var baseBlock = []template{
	{
		title:        "Initial Setup",
		description:  "Set up cleaning equipment and assess the space",
		instructions: "Bring all equipment in, walk the site and note any areas that need special attention.",
		skills:       []string{"cleaning"},
		minutes:      10,
		equipment:    []string{"cleaning cart", "vacuum", "mop bucket"},
		priority:     PriorityHigh,
	},
	{
		title:        "Vacuum/Sweep Floors",
		description:  "Vacuum carpets and sweep hard floors throughout",
		instructions: "Work from the far end of each room toward the exit. Move light furniture where possible.",
		skills:       []string{"cleaning"},
		minutes:      30,
		equipment:    []string{"vacuum cleaner", "broom", "dustpan"},
		priority:     PriorityHigh,
	},
	{
		title:        "Dust Surfaces",
		description:  "Dust all reachable surfaces, shelves and fixtures",
		instructions: "Dust top to bottom so debris falls onto floors that are cleaned afterwards.",
		skills:       []string{"cleaning"},
		minutes:      25,
		equipment:    []string{"microfiber cloths", "dusting spray", "extendable duster"},
		priority:     PriorityMedium,
	},
}

var jobTypeBlocks = map[string][]template{
	JobTypeDeepCleaning: {
		{
			title:        "Deep Clean Bathrooms",
			description:  "Scrub and sanitize toilets, showers, tubs and sinks",
			instructions: "Apply disinfectant and leave it for the labelled contact time before scrubbing. Clean grout lines.",
			skills:       []string{"cleaning", "sanitization"},
			minutes:      45,
			equipment:    []string{"toilet brush", "scrub brush", "disinfectant", "glass cleaner"},
			priority:     PriorityHigh,
		},
		{
			title:        "Kitchen Deep Clean",
			description:  "Degrease appliances, clean inside the oven and sanitize counters",
			instructions: "Clean the oven interior and range hood, wipe cabinet fronts and sanitize all food prep surfaces.",
			skills:       []string{"cleaning", "kitchen"},
			minutes:      60,
			equipment:    []string{"degreaser", "oven cleaner", "scrub pads", "sanitizer"},
			priority:     PriorityHigh,
		},
		{
			title:        "Window Cleaning",
			description:  "Clean interior windows, sills and tracks",
			instructions: "Squeegee glass top to bottom and wipe the frames and sills dry.",
			skills:       []string{"window-cleaning"},
			minutes:      40,
			equipment:    []string{"squeegee", "window cleaner", "lint-free cloths"},
			priority:     PriorityMedium,
		},
	},
	JobTypeRegular: {
		{
			title:        "Clean Bathrooms",
			description:  "Clean toilets, sinks, mirrors and showers",
			instructions: "Wipe all fixtures, clean mirrors streak free and restock paper supplies.",
			skills:       []string{"cleaning", "sanitization"},
			minutes:      25,
			equipment:    []string{"toilet brush", "all-purpose cleaner", "paper towels"},
			priority:     PriorityHigh,
		},
		{
			title:        "Kitchen Clean",
			description:  "Wipe counters, appliance fronts and the sink",
			instructions: "Clear and wipe the counters, clean the sink and wipe appliance exteriors.",
			skills:       []string{"cleaning"},
			minutes:      30,
			equipment:    []string{"all-purpose cleaner", "sponges", "dish soap"},
			priority:     PriorityHigh,
		},
	},
	JobTypeOffice: {
		{
			title:        "Empty Trash Bins",
			description:  "Empty all waste and recycling bins and replace liners",
			instructions: "Keep recycling separate. Wipe the inside of any soiled bin.",
			skills:       []string{"cleaning"},
			minutes:      15,
			equipment:    []string{"trash bags", "sanitizer", "gloves"},
			priority:     PriorityHigh,
		},
		{
			title:        "Clean Workstations",
			description:  "Wipe desks, keyboards, phones and monitors",
			instructions: "Do not move papers on desks. Use electronics cleaner on screens and keyboards only.",
			skills:       []string{"cleaning", "electronics"},
			minutes:      35,
			equipment:    []string{"electronics cleaner", "microfiber cloths", "compressed air"},
			priority:     PriorityMedium,
		},
	},
}

var buildingBlocks = map[string][]template{
	BuildingApartment: {
		{
			title:        "Balcony/Patio Clean",
			description:  "Sweep and wipe down the balcony or patio",
			instructions: "Sweep debris, wipe railings and rinse the floor if a hose is available.",
			skills:       []string{"cleaning"},
			minutes:      20,
			equipment:    []string{"broom", "outdoor cleaner", "hose"},
			priority:     PriorityLow,
		},
	},
	BuildingHouse: {
		{
			title:        "Multiple Bedroom Clean",
			description:  "Clean every bedroom, including making beds",
			instructions: "Change linens if fresh ones are provided, vacuum under beds and dust furniture.",
			skills:       []string{"cleaning"},
			minutes:      50,
			equipment:    []string{"vacuum", "dusting cloths", "fresh linens"},
			priority:     PriorityMedium,
		},
	},
}

var closingBlock = []template{
	{
		title:        "Final Inspection",
		description:  "Walk through every area and check the work",
		instructions: "Use the checklist, touch up anything missed and confirm all areas meet the standard.",
		skills:       []string{"cleaning"},
		minutes:      15,
		equipment:    []string{"checklist", "touch-up supplies"},
		priority:     PriorityHigh,
	},
	{
		title:        "Equipment Cleanup",
		description:  "Clean and pack away all equipment",
		instructions: "Empty the vacuum, rinse mop heads and return everything to the cart.",
		skills:       []string{"cleaning"},
		minutes:      10,
		equipment:    []string{"cleaning cart", "storage containers"},
		priority:     PriorityMedium,
	},
}

// NormalizeJobType lowercases a job type and resolves aliases.
func NormalizeJobType(jobType string) string {
	jt := strings.ToLower(strings.TrimSpace(jobType))
	if alias, ok := jobTypeAliases[jt]; ok {
		return alias
	}
	return jt
}

// Generate returns the checklist for a job. Output is deterministic: base
// block, job-type block, building-type block, then closing block, with ids
// numbered from "1" in that order. Unknown tags skip their block.
func Generate(jobType, buildingType string) []models.Task {
	blocks := [][]template{
		baseBlock,
		jobTypeBlocks[NormalizeJobType(jobType)],
		buildingBlocks[strings.ToLower(strings.TrimSpace(buildingType))],
		closingBlock,
	}

	var tasks []models.Task
	for _, block := range blocks {
		for _, tpl := range block {
			tasks = append(tasks, tpl.build(strconv.Itoa(len(tasks)+1)))
		}
	}
	return tasks
}

// TotalDuration sums the estimated minutes of a checklist.
func TotalDuration(tasks []models.Task) int {
	total := 0
	for _, t := range tasks {
		total += t.EstimatedDuration
	}
	return total
}

func (t template) build(id string) models.Task {
	return models.Task{
		ID:                id,
		Title:             t.title,
		Description:       t.description,
		Instructions:      t.instructions,
		RequiredSkills:    append([]string(nil), t.skills...),
		EstimatedDuration: t.minutes,
		Equipment:         append([]string(nil), t.equipment...),
		Priority:          t.priority,
	}
}
