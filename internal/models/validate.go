package models

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	singleLine = regexp.MustCompile(`^[^\r\n]*$`)
	// Tags are written inside a bracketed, comma separated list.
	tagPattern = regexp.MustCompile(`^[^\r\n,\[\]"']+$`)

	// noDelimiter rejects values that would close the front-matter block.
	noDelimiter = validation.NewStringRule(func(s string) bool {
		return !strings.Contains(s, "---")
	}, `must not contain "---"`)
)

// TitleRules are the rules a title must satisfy to survive the file format.
var TitleRules = []validation.Rule{
	validation.Length(0, 512),
	validation.Match(singleLine).Error("must be a single line"),
	noDelimiter,
}

// TagsRule checks every element of a tag list.
var TagsRule = validation.Each(
	validation.Required,
	validation.Length(1, 64),
	validation.Match(tagPattern).Error("must not contain commas, brackets, quotes or line breaks"),
	noDelimiter,
)

// Validate checks that the fields set in u can be stored.
func (u Update) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Title, TitleRules...),
		validation.Field(&u.Tags, TagsRule),
	)
}

// Validate checks that n can be encoded and read back unchanged.
func (n Note) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.ID, validation.Required, validation.Match(singleLine), noDelimiter),
		validation.Field(&n.Title, TitleRules...),
		validation.Field(&n.Tags, TagsRule),
	)
}
