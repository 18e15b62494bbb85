package rosterpage

import (
	"regexp"

	"rostersync-backend/lib/fieldmatch"
)

type SourceKind string

const (
	SourceGeneric        SourceKind = "generic"
	SourcePowerSchool    SourceKind = "powerschool"
	SourceAeries         SourceKind = "aeries"
	SourceInfiniteCampus SourceKind = "infinitecampus"
	SourceSkyward        SourceKind = "skyward"
	SourceMoodle         SourceKind = "moodle"
	SourceCanvas         SourceKind = "canvas"
	SourceSchoology      SourceKind = "schoology"
)

type Layout string

const (
	LayoutTable Layout = "table"
	LayoutCards Layout = "cards"
)

// SourceConfig is all that distinguishes one source's parser from
// another: the algorithm is shared, only this data varies per platform.
type SourceConfig struct {
	Kind SourceKind
	// Prefix namespaces synthesized ids.
	Prefix string
	// Hosts are matched (exact or substring) against the page origin.
	Hosts  []string
	Layout Layout
	// ContainerSelectors are tried in order before the generic
	// largest-table fallback.
	ContainerSelectors []string
	// CardSelector locates individual student tiles for card layouts.
	CardSelector string
	// IDPatterns recover a student id from a profile link, first
	// capture group wins.
	IDPatterns []*regexp.Regexp
	// KeepExtraColumns preserves unmatched columns into Record.Extra.
	// Card layouts have no stable column concept so they never do.
	KeepExtraColumns bool
	ColumnRules      []fieldmatch.Rule
}

var trailingNumericSegment = regexp.MustCompile(`/(\d+)(?:[/?#]|$)`)

var sources = []SourceConfig{
	{
		Kind:   SourcePowerSchool,
		Prefix: "ps",
		Hosts:  []string{"powerschool.com", "powerschool"},
		Layout: LayoutTable,
		ContainerSelectors: []string{
			"table.linkDescList",
			"table#students",
			"div.box-round table",
		},
		IDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`[?&]frn=\d{3}(\d+)`),
			regexp.MustCompile(`[?&]studentid=(\d+)`),
			trailingNumericSegment,
		},
		KeepExtraColumns: true,
		ColumnRules:      fieldmatch.RosterRules(),
	},
	{
		Kind:   SourceAeries,
		Prefix: "aeries",
		Hosts:  []string{"aeries.net", "aeries"},
		Layout: LayoutTable,
		ContainerSelectors: []string{
			"table.GridView",
			"div.students-grid [role=grid]",
			"table[id*=Student]",
		},
		IDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`[?&]StudentID=(\d+)`),
			trailingNumericSegment,
		},
		KeepExtraColumns: true,
		ColumnRules:      fieldmatch.RosterRules(),
	},
	{
		Kind:   SourceInfiniteCampus,
		Prefix: "ic",
		Hosts:  []string{"infinitecampus.com", "infinitecampus", "icampus"},
		Layout: LayoutCards,
		CardSelector: "div.student-card, li.student-tile, div[class*=studentCard]",
		IDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`[?&]personID=(\d+)`),
			trailingNumericSegment,
		},
		ColumnRules: fieldmatch.RosterRules(),
	},
	{
		Kind:   SourceSkyward,
		Prefix: "sky",
		Hosts:  []string{"skyward.com", "skyward"},
		Layout: LayoutTable,
		ContainerSelectors: []string{
			"table#gridStudents",
			"div.sf_gridTableWrap table",
		},
		IDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`[?&]nameid=(\d+)`),
			trailingNumericSegment,
		},
		KeepExtraColumns: true,
		ColumnRules:      fieldmatch.RosterRules(),
	},
	{
		Kind:   SourceMoodle,
		Prefix: "moodle",
		Hosts:  []string{"moodle", "learn."},
		Layout: LayoutTable,
		ContainerSelectors: []string{
			"table#participants",
			"table.generaltable",
		},
		IDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`/user/(?:view|profile)\.php\?id=(\d+)`),
			regexp.MustCompile(`[?&]id=(\d+)`),
		},
		KeepExtraColumns: true,
		ColumnRules:      fieldmatch.RosterRules(),
	},
	{
		Kind:   SourceCanvas,
		Prefix: "canvas",
		Hosts:  []string{"instructure.com", "canvas"},
		Layout: LayoutTable,
		ContainerSelectors: []string{
			"table.roster",
			"table[data-automation=roster-table]",
		},
		IDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`/users/(\d+)`),
			trailingNumericSegment,
		},
		KeepExtraColumns: true,
		ColumnRules:      fieldmatch.RosterRules(),
	},
	{
		Kind:         SourceSchoology,
		Prefix:       "sgy",
		Hosts:        []string{"schoology.com", "schoology"},
		Layout:       LayoutCards,
		CardSelector: "div.user-item, li.member-item",
		IDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`/user/(\d+)`),
			trailingNumericSegment,
		},
		ColumnRules: fieldmatch.RosterRules(),
	},
	{
		Kind:   SourceGeneric,
		Prefix: "gen",
		Layout: LayoutTable,
		IDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`/students?/(\d+)`),
			regexp.MustCompile(`[?&](?:student_?id|id)=(\d+)`),
			trailingNumericSegment,
		},
		KeepExtraColumns: true,
		ColumnRules:      fieldmatch.RosterRules(),
	},
}

// Sources returns the fixed registry of known source configurations,
// the generic catch-all last.
func Sources() []SourceConfig {
	return sources
}

// ConfigFor resolves a source kind to its configuration, falling back
// to the generic config.
func ConfigFor(kind SourceKind) SourceConfig {
	for _, cfg := range sources {
		if cfg.Kind == kind {
			return cfg
		}
	}
	return sources[len(sources)-1]
}
