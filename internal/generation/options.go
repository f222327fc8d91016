package generation

import (
	"net/http"
	"strconv"
	"strings"
)

// Detail level bounds.
const (
	MinDetailLevel     = 1
	MaxDetailLevel     = 5
	DefaultDetailLevel = 3
)

// Defaults applied by Normalize.
const (
	DefaultLanguage  = "english"
	DefaultStudyGoal = "understanding"
)

// Request header names carrying Options.
const (
	HeaderLanguage    = "language"
	HeaderDetailLevel = "detail-level"
	HeaderKeywords    = "keywords"
	HeaderStudyGoal   = "study-goal"
)

// Options steer what the generator produces.
type Options struct {
	Language    string
	DetailLevel int
	Keywords    string
	StudyGoal   string
}

// Normalize clamps DetailLevel to [MinDetailLevel, MaxDetailLevel], treating
// zero as DefaultDetailLevel, and fills in the default language and goal.
func (o Options) Normalize() Options {
	switch {
	case o.DetailLevel == 0:
		o.DetailLevel = DefaultDetailLevel
	case o.DetailLevel < MinDetailLevel:
		o.DetailLevel = MinDetailLevel
	case o.DetailLevel > MaxDetailLevel:
		o.DetailLevel = MaxDetailLevel
	}

	o.Language = strings.TrimSpace(o.Language)
	if o.Language == "" {
		o.Language = DefaultLanguage
	}

	o.StudyGoal = strings.TrimSpace(o.StudyGoal)
	if o.StudyGoal == "" {
		o.StudyGoal = DefaultStudyGoal
	}

	o.Keywords = strings.TrimSpace(o.Keywords)
	return o
}

// KeywordList splits Keywords on commas, dropping blanks.
func (o Options) KeywordList() []string {
	var out []string
	for _, k := range strings.Split(o.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// SetHeaders writes the normalized options onto h.
func (o Options) SetHeaders(h http.Header) {
	n := o.Normalize()
	h.Set(HeaderLanguage, n.Language)
	h.Set(HeaderDetailLevel, strconv.Itoa(n.DetailLevel))
	h.Set(HeaderKeywords, n.Keywords)
	h.Set(HeaderStudyGoal, n.StudyGoal)
}

// OptionsFromHeaders reads options written by SetHeaders. A missing or
// non-numeric detail level becomes the default; the result is normalized.
func OptionsFromHeaders(h http.Header) Options {
	level, err := strconv.Atoi(strings.TrimSpace(h.Get(HeaderDetailLevel)))
	if err != nil {
		level = 0
	}
	return Options{
		Language:    h.Get(HeaderLanguage),
		DetailLevel: level,
		Keywords:    h.Get(HeaderKeywords),
		StudyGoal:   h.Get(HeaderStudyGoal),
	}.Normalize()
}
