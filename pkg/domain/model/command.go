package model

import (
	"strings"
	"unicode"

	"github.com/m-mizutani/tagrelease/pkg/domain/types"
)

const (
	// ReleaseUsage is shown together with every validation failure of the create release command
	ReleaseUsage = `Usage:  create release --name="Some name" --version=1.1.1 --platform=ios --notes="comma,delimited,list of notes"`

	reasonNameRequired    = "A release name is required."
	reasonVersionRequired = "A semantic release version is required."
)

// DefaultPlatforms is used when --platform is not given
var DefaultPlatforms = []string{"ios", "android"}

// ReleaseCommand is a validated "create release" command
type ReleaseCommand struct {
	Name      string
	Version   string // empty when not given
	Notes     []string
	Platforms []string

	// IgnoredFlags holds flags outside of the command schema
	IgnoredFlags []string
}

// HasVersion reports whether a version was supplied on the command
func (x *ReleaseCommand) HasVersion() bool {
	return x.Version != ""
}

// ValidationError is returned by ParseReleaseCommand when the command is not acceptable.
// It is a user mistake, not a system failure.
type ValidationError struct {
	Reason string
}

func (x *ValidationError) Error() string { return x.Reason }

// Help returns the message shown to the user for the validation failure
func (x *ValidationError) Help() string {
	return x.Reason + "\n\n> " + ReleaseUsage
}

const (
	fieldName      = "name"
	fieldVersion   = "version"
	fieldPlatforms = "platforms"
	fieldNotes     = "notes"
)

// flagSchema maps accepted flag names to command fields
var flagSchema = map[string]string{
	"name":      fieldName,
	"version":   fieldVersion,
	"platform":  fieldPlatforms,
	"platforms": fieldPlatforms,
	"notes":     fieldNotes,
}

var quoteReplacer = strings.NewReplacer(
	"\u2018", "'",
	"\u2019", "'",
	"\u201C", `"`,
	"\u201D", `"`,
)

// NormalizeQuotes replaces typographic quotes inserted by chat clients with ASCII quotes
func NormalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

type parseOptions struct {
	defaultPlatforms []string
}

// ParseOption customizes ParseReleaseCommand
type ParseOption func(*parseOptions)

// WithDefaultPlatforms replaces DefaultPlatforms for commands without --platform
func WithDefaultPlatforms(platforms []string) ParseOption {
	return func(o *parseOptions) {
		if len(platforms) > 0 {
			o.defaultPlatforms = platforms
		}
	}
}

// ParseReleaseCommand parses arguments following "create release", e.g.
// `--name="Some name" --version=1.1.1 --platform=ios --notes="a,b"`.
// The returned error is a *ValidationError when the arguments are invalid.
func ParseReleaseCommand(args string, opts ...ParseOption) (*ReleaseCommand, error) {
	options := parseOptions{defaultPlatforms: DefaultPlatforms}
	for _, opt := range opts {
		opt(&options)
	}

	values, ignored := parseFlags(tokenize(NormalizeQuotes(strings.TrimSpace(args))))

	name := strings.TrimSpace(values[fieldName])
	if name == "" {
		return nil, &ValidationError{Reason: reasonNameRequired}
	}

	version, hasVersion := values[fieldVersion]
	version = strings.TrimSpace(version)
	if hasVersion && !types.IsValidReleaseVersion(version) {
		return nil, &ValidationError{Reason: reasonVersionRequired}
	}

	notes := splitList(values[fieldNotes])
	if len(notes) == 0 {
		notes = splitList(name)
	}
	if len(notes) == 0 {
		notes = []string{name}
	}

	platforms := splitList(values[fieldPlatforms])
	if len(platforms) == 0 {
		platforms = append([]string{}, options.defaultPlatforms...)
	}

	return &ReleaseCommand{
		Name:         name,
		Version:      version,
		Notes:        notes,
		Platforms:    platforms,
		IgnoredFlags: ignored,
	}, nil
}

// parseFlags reads "--key=value" and "--key value" tokens. A flag without a value
// is recorded with an empty string. The last occurrence of a flag wins.
func parseFlags(tokens []string) (map[string]string, []string) {
	values := make(map[string]string)
	var ignored []string

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "--") {
			continue
		}

		key, value, hasValue := strings.Cut(tok[2:], "=")
		if !hasValue && i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "--") {
			value = tokens[i+1]
			i++
		}

		field, ok := flagSchema[strings.ToLower(key)]
		if !ok {
			ignored = append(ignored, key)
			continue
		}
		values[field] = value
	}

	return values, ignored
}

// tokenize splits s on whitespace. Single or double quotes group characters,
// including whitespace, and are removed from the token.
func tokenize(s string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		quote   rune
		inToken bool
	)

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}

	return tokens
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if v := strings.TrimSpace(item); v != "" {
			items = append(items, v)
		}
	}
	return items
}
