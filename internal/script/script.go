/*
Copyright 2025 The Kubeflow authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package script

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/kubeflow/yarn-launcher/api/v1alpha1"
)

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_.\-]+)\}`)

// Script is a script given either by file location or inline text.
type Script struct {
	Location  string
	Inline    string
	Arguments map[string]string
}

// FromSpecs converts manifest scripts.
func FromSpecs(specs []v1alpha1.ScriptSpec) []Script {
	scripts := make([]Script, 0, len(specs))
	for _, spec := range specs {
		scripts = append(scripts, Script{
			Location:  spec.Location,
			Inline:    spec.Inline,
			Arguments: spec.Arguments,
		})
	}
	return scripts
}

// Validate checks that exactly one of Location and Inline is set.
func (s Script) Validate() error {
	switch {
	case s.Location != "" && s.Inline != "":
		return fmt.Errorf("script must set only one of location and inline")
	case s.Location == "" && strings.TrimSpace(s.Inline) == "":
		return fmt.Errorf("script must set either location or inline")
	}
	return nil
}

// String identifies the script in logs.
func (s Script) String() string {
	if s.Location != "" {
		return s.Location
	}
	return "<inline>"
}

// Text returns the script content with ${name} placeholders replaced by arguments.
// Unknown placeholders are left as they are.
func (s Script) Text() (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}

	text := s.Inline
	if s.Location != "" {
		content, err := os.ReadFile(s.Location)
		if err != nil {
			return "", fmt.Errorf("failed to read script %s: %v", s.Location, err)
		}
		text = string(content)
	}

	if len(s.Arguments) == 0 {
		return text, nil
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := s.Arguments[name]; ok {
			return value
		}
		return match
	}), nil
}

// SplitStatements splits script text into statements terminated by semicolons. Semicolons in
// quoted strings and comments are ignored, and comments are dropped. A "--" starts a comment
// only at the start of a line or after whitespace. Backslash escapes inside quotes are honored
// only when backslashEscapes is set, as in MySQL. Empty statements are dropped.
func SplitStatements(text string, backslashEscapes bool) []string {
	var (
		statements   []string
		current      strings.Builder
		quote        rune
		lineComment  bool
		blockComment bool
	)

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case lineComment:
			if r == '\n' {
				lineComment = false
				current.WriteRune(r)
			}
			continue
		case blockComment:
			if r == '*' && i+1 < len(runes) && runes[i+1] == '/' {
				blockComment = false
				i++
				current.WriteRune(' ')
			}
			continue
		case quote != 0:
			current.WriteRune(r)
			if backslashEscapes && r == '\\' && i+1 < len(runes) {
				i++
				current.WriteRune(runes[i])
			} else if r == quote {
				quote = 0
			}
			continue
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-' && (i == 0 || unicode.IsSpace(runes[i-1])):
			lineComment = true
			i++
			continue
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			blockComment = true
			i++
			continue
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == ';':
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
