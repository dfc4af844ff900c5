package crew

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
)

// Templates use Python-style {name} placeholders; literal braces are written as {{ and }}.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

var escapedBraces = strings.NewReplacer("{{", "", "}}", "")

// Placeholders returns the sorted, de-duplicated placeholder names used by the templates.
func Placeholders(templates ...string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, tpl := range templates {
		for _, m := range placeholderPattern.FindAllStringSubmatch(escapedBraces.Replace(tpl), -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	sort.Strings(names)
	return names
}

// MissingInputs returns the placeholders that have no value in inputs.
func MissingInputs(inputs map[string]string, templates ...string) []string {
	var missing []string
	for _, name := range Placeholders(templates...) {
		if _, ok := inputs[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Render substitutes inputs into tpl. Every placeholder must have a value.
func Render(ctx context.Context, tpl string, inputs map[string]string) (string, error) {
	if missing := MissingInputs(inputs, tpl); len(missing) > 0 {
		return "", errors.Wrap(ErrMissingInput, strings.Join(missing, ", "))
	}

	vs := make(map[string]any, len(inputs))
	for k, v := range inputs {
		vs[k] = v
	}

	msgs, err := prompt.FromMessages(schema.FString, schema.UserMessage(tpl)).Format(ctx, vs)
	if err != nil {
		return "", errors.Wrap(err, "render template")
	}
	if len(msgs) == 0 {
		return "", errors.New("render template: no output")
	}
	return msgs[0].Content, nil
}
