package service

import (
	"net/url"
	"strings"
)

const imagePlaceholder = "{image}"

// ImageURL fills the template's {image} placeholder. Templates without one
// get the name appended after a slash.
func ImageURL(template, image string) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}
	escaped := url.PathEscape(image)
	if strings.Contains(template, imagePlaceholder) {
		return strings.ReplaceAll(template, imagePlaceholder, escaped)
	}
	return strings.TrimRight(template, "/") + "/" + escaped
}
