package techspec

import (
	"fmt"
	"strings"
)

// BuildRequirements derives the templated requirement documents from a
// captured specification. Pure text generation: identical input yields
// identical output.
func BuildRequirements(spec *Spec) Requirements {
	return Requirements{
		HTML:  htmlRequirements(spec),
		CSS:   cssRequirements(spec),
		JS:    jsRequirements(spec),
		Steps: implementationSteps(spec),
	}
}

func htmlRequirements(spec *Spec) []string {
	reqs := []string{
		fmt.Sprintf("Document titled %q with approximately %d elements.", spec.Meta.Title, spec.ElementCount),
	}
	if spec.Meta.Description != "" {
		reqs = append(reqs, fmt.Sprintf("Meta description: %q.", spec.Meta.Description))
	}
	if spec.Meta.Lang != "" {
		reqs = append(reqs, fmt.Sprintf("Document language %q.", spec.Meta.Lang))
	}

	if n := len(spec.Forms); n > 0 {
		fields := 0
		for _, f := range spec.Forms {
			fields += len(f.Fields)
		}
		reqs = append(reqs, fmt.Sprintf("%d form(s) with %d field(s) total.", n, fields))
	}

	if spec.Structure != nil {
		landmarks := landmarkTags(spec.Structure)
		if len(landmarks) > 0 {
			reqs = append(reqs, fmt.Sprintf("Structural landmarks: %s.", strings.Join(landmarks, ", ")))
		}
	}

	return reqs
}

func cssRequirements(spec *Spec) []string {
	reqs := []string{
		fmt.Sprintf("Layout model: %s.", spec.Layout.Model),
		fmt.Sprintf("%d external stylesheet(s), %d style block(s), %d inline style(s).",
			spec.CSS.StylesheetCount, spec.CSS.StyleBlockCount, spec.CSS.InlineStyleCount),
	}
	if len(spec.CSS.CustomProperties) > 0 {
		reqs = append(reqs, fmt.Sprintf("Custom properties: %s.", strings.Join(spec.CSS.CustomProperties, ", ")))
	}
	if len(spec.Colors.Backgrounds) > 0 {
		reqs = append(reqs, fmt.Sprintf("Background palette: %s.", strings.Join(spec.Colors.Backgrounds, ", ")))
	}
	if len(spec.Colors.Texts) > 0 {
		reqs = append(reqs, fmt.Sprintf("Text palette: %s.", strings.Join(spec.Colors.Texts, ", ")))
	}
	return reqs
}

func jsRequirements(spec *Spec) []string {
	reqs := []string{
		fmt.Sprintf("%d external script(s), %d inline script(s).",
			len(spec.JS.ExternalScripts), spec.JS.InlineScriptCount),
	}
	if len(spec.JS.Frameworks) > 0 {
		reqs = append(reqs, fmt.Sprintf("Detected frameworks: %s.", strings.Join(spec.JS.Frameworks, ", ")))
	}
	if interactiveCount(spec.Structure) > 0 {
		reqs = append(reqs, fmt.Sprintf("%d interactive element(s) require event wiring.",
			interactiveCount(spec.Structure)))
	}
	return reqs
}

func implementationSteps(spec *Spec) []string {
	steps := []string{
		"Scaffold the document skeleton with the captured landmarks and metadata.",
		fmt.Sprintf("Implement the %s layout for the main content areas.", spec.Layout.Model),
		"Apply the captured color palette and typography rules.",
	}
	if len(spec.Forms) > 0 {
		steps = append(steps, fmt.Sprintf("Build %d form(s) with their field sets and validation.", len(spec.Forms)))
	}
	if len(spec.JS.Frameworks) > 0 || spec.JS.InlineScriptCount > 0 || len(spec.JS.ExternalScripts) > 0 {
		steps = append(steps, "Wire interactive behavior for scripted elements.")
	}
	steps = append(steps, fmt.Sprintf("Review against the source page (complexity: %s).", spec.Complexity.Level))
	return steps
}

// landmarkTags collects the distinct landmark element names present in
// the structural tree, in first-seen order.
func landmarkTags(node *DOMNode) []string {
	landmarks := map[string]bool{
		"header": true, "nav": true, "main": true,
		"article": true, "aside": true, "footer": true,
	}
	seen := map[string]bool{}
	var found []string

	var walk func(*DOMNode)
	walk = func(n *DOMNode) {
		if n == nil {
			return
		}
		if landmarks[n.Tag] && !seen[n.Tag] {
			seen[n.Tag] = true
			found = append(found, n.Tag)
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(node)

	return found
}

func interactiveCount(node *DOMNode) int {
	if node == nil {
		return 0
	}
	count := 0
	if node.Interactive {
		count++
	}
	for _, child := range node.Children {
		count += interactiveCount(child)
	}
	return count
}
