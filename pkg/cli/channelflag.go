// Package cli provides flag values for the accompanist binary's command
// line: the repeatable track:channel selector used by --input-channels and
// --output-channels.
package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"accompanist/pkg/score"
)

// ChannelSpecList is a repeatable pflag.Value: every --input-channels or
// --output-channels flag occurrence appends one more parsed ChannelSpec.
type ChannelSpecList struct {
	Values []score.ChannelSpec
}

func (c *ChannelSpecList) String() string {
	parts := make([]string, len(c.Values))
	for i, v := range c.Values {
		parts[i] = formatChannelSpec(v)
	}
	return strings.Join(parts, ",")
}

func (c *ChannelSpecList) Set(raw string) error {
	spec, err := score.ParseChannelSpec(raw)
	if err != nil {
		return err
	}
	c.Values = append(c.Values, spec)
	return nil
}

func (c *ChannelSpecList) Type() string { return "track:ch[,ch...]" }

func formatChannelSpec(spec score.ChannelSpec) string {
	channels := make([]int, 0, len(spec.Channels))
	for ch := range spec.Channels {
		channels = append(channels, ch+1)
	}
	sort.Ints(channels)
	parts := make([]string, len(channels))
	for i, ch := range channels {
		parts[i] = strconv.Itoa(ch)
	}
	return fmt.Sprintf("%d:%s", spec.Track+1, strings.Join(parts, ","))
}
