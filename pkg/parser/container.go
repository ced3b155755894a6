package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// PlaceholderImage replaces image references that still contain template
// expressions; resolving them is not this tool's job.
const PlaceholderImage = "placeholder:latest"

var (
	reContainerName = regexp.MustCompile(`name:\s*(\S+)`)
	reImage         = regexp.MustCompile(`image:\s*(.+)`)
	reContainerPort = regexp.MustCompile(`containerPort:\s*(\d+)`)
)

// splitContainerBlocks cuts a containers-section text into per-container
// chunks. A new chunk starts at a list item introducing a name or env key at
// the container-list indent; deeper list items (env entries, ports) continue
// the current chunk.
func splitContainerBlocks(section string) []string {
	var blocks []string
	var current []string
	itemIndent := -1

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range strings.Split(section, "\n") {
		stripped := strings.TrimSpace(line)
		indent := len(line) - len(strings.TrimLeft(line, " "))

		if strings.HasPrefix(stripped, "- ") && itemIndent < 0 {
			itemIndent = indent
		}
		boundary := strings.HasPrefix(stripped, "- name:") || strings.HasPrefix(stripped, "- env:")
		if boundary && indent == itemIndent {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return blocks
}

// ContainerBlocks returns the raw per-container text chunks of a
// Deployment document in declaration order, keeping their original
// indentation so callers can run their own scans over them.
func ContainerBlocks(doc string) []string {
	section := sectionAfterKey(strings.Split(doc, "\n"), "containers")
	if strings.TrimSpace(section) == "" {
		return nil
	}
	return splitContainerBlocks(section)
}

// ExtractContainers recovers container entries from a containers-section
// text. Recognized Deployments always yield at least one container: when
// nothing can be extracted, a synthetic "server" container with the
// placeholder image stands in.
func ExtractContainers(section string) []Container {
	var containers []Container

	for _, block := range splitContainerBlocks(section) {
		c := Container{}
		if m := reContainerName.FindStringSubmatch(block); m != nil {
			c.Name = m[1]
		}
		if c.Name == "" {
			continue
		}
		if m := reImage.FindStringSubmatch(block); m != nil {
			image := strings.TrimSpace(m[1])
			if strings.Contains(image, "{{") {
				image = PlaceholderImage
			}
			c.Image = image
		}
		if m := reContainerPort.FindStringSubmatch(block); m != nil {
			c.ContainerPort, _ = strconv.Atoi(m[1])
		}
		containers = append(containers, c)
	}

	if len(containers) == 0 {
		containers = []Container{{Name: "server", Image: PlaceholderImage}}
	}
	return containers
}
