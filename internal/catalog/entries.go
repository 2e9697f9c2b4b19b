package catalog

import (
	"github.com/reoring/goshape"
)

// RunsOn lists where a project runs. Labels match case-insensitively and
// with hyphens read as underscores.
var RunsOn = goshape.MustEnum("RunsOn", "server", "local", "web")

// Language matches the exact lowercase language value.
var Language = goshape.MustValueEnum("Language",
	goshape.Value("PYTHON", "python"),
	goshape.Value("BASH", "bash"),
	goshape.Value("PERL", "perl"),
	goshape.Value("ELM", "elm"),
	goshape.Value("JAVASCRIPT", "javascript"),
	goshape.Value("C", "c"),
)

// EntryType describes one project entry of a scripts collection.
var EntryType = goshape.Named("Entry").MustBind(goshape.Record().
	Field("name", goshape.MustRestrict(goshape.MaxLen(20))).
	Field("description", goshape.MustRestrict(goshape.MaxLen(200))).
	Field("link", goshape.Optional(goshape.MustRestrict(goshape.Pattern(`https?://.+`)))).
	Field("usage", goshape.Optional(goshape.String)).Default(nil).
	Field("runs_on", goshape.List(RunsOn)).
	Field("contributors", goshape.List(goshape.String)).
	Field("maintained", goshape.Bool).
	Field("notes", goshape.Optional(goshape.String)).Default(nil).
	Field("languages", goshape.List(Language)).DefaultFunc(emptyList).
	Field("tags", goshape.List(goshape.String)).DefaultFunc(emptyList).
	Field("obsolete", goshape.Bool).Default(false))

// Entries is the schema of an entries document: a list of Entry records.
var Entries = goshape.MustCompile(goshape.List(EntryType))

func emptyList() any { return []any{} }

// Entry is the Go projection of an Entry record.
type Entry struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Link         *string  `json:"link"`
	Usage        *string  `json:"usage"`
	RunsOn       []string `json:"runs_on"`
	Contributors []string `json:"contributors"`
	Maintained   bool     `json:"maintained"`
	Notes        *string  `json:"notes"`
	Languages    []string `json:"languages"`
	Tags         []string `json:"tags"`
	Obsolete     bool     `json:"obsolete"`
}

// DecodeEntries validates a decoded entries document and projects it.
func DecodeEntries(data any, opts ...goshape.ParseOpt) ([]Entry, error) {
	out, err := Entries.Validate(data, opts...)
	if err != nil {
		return nil, err
	}
	return goshape.As[[]Entry](out)
}
