package domain

import "slices"

// Configuration is the persisted filter state. Sets are kept as slices so the
// JSON form matches what operators edit by hand.
type Configuration struct {
	IsRunning          bool     `json:"is_running"`
	SourceChannels     []int64  `json:"source_channels"`
	SourceChannelNames []string `json:"source_channel_names"`
	Keywords           []string `json:"keywords"`
	Admins             []int64  `json:"admins"`
	DestinationChannel int64    `json:"destination_channel"`
}

// DefaultConfiguration is used when nothing has been persisted yet.
func DefaultConfiguration() Configuration {
	return Configuration{
		IsRunning:          true,
		SourceChannels:     []int64{},
		SourceChannelNames: []string{},
		Keywords:           []string{},
		Admins:             []int64{},
	}
}

func (c Configuration) Clone() Configuration {
	out := c
	out.SourceChannels = cloneOrEmpty(c.SourceChannels)
	out.SourceChannelNames = cloneOrEmpty(c.SourceChannelNames)
	out.Keywords = cloneOrEmpty(c.Keywords)
	out.Admins = cloneOrEmpty(c.Admins)
	return out
}

func (c Configuration) HasSource(chatID int64) bool {
	return slices.Contains(c.SourceChannels, chatID)
}

func (c Configuration) IsAdmin(userID int64) bool {
	if userID == 0 {
		return false
	}
	return slices.Contains(c.Admins, userID)
}

// Normalize fills nil lists and collapses duplicate ids in the set fields.
func (c *Configuration) Normalize() {
	c.SourceChannels = uniqueIDs(c.SourceChannels)
	c.Admins = uniqueIDs(c.Admins)
	if c.SourceChannelNames == nil {
		c.SourceChannelNames = []string{}
	}
	if c.Keywords == nil {
		c.Keywords = []string{}
	}
}

func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func cloneOrEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return slices.Clone(in)
}
