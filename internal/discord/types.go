package discord

import "encoding/json"

// Interaction types and response types from the Discord interactions API.
const (
	interactionPing               = 1
	interactionApplicationCommand = 2

	responsePong           = 1
	responseChannelMessage = 4

	optionTypeSubcommand = 1
)

// Interaction is the subset of the interaction payload this bot consumes.
type Interaction struct {
	ID        string           `json:"id"`
	Type      int              `json:"type"`
	ChannelID string           `json:"channel_id,omitempty"`
	Data      *InteractionData `json:"data,omitempty"`
	Member    *Member          `json:"member,omitempty"`
	User      *User            `json:"user,omitempty"`
}

type InteractionData struct {
	Name    string   `json:"name"`
	Options []Option `json:"options,omitempty"`
}

// Option is a command option or, for type 1, a subcommand carrying nested
// options.
type Option struct {
	Name    string          `json:"name"`
	Type    int             `json:"type"`
	Value   json.RawMessage `json:"value,omitempty"`
	Options []Option        `json:"options,omitempty"`
}

type Member struct {
	User *User `json:"user,omitempty"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type interactionResponse struct {
	Type int                      `json:"type"`
	Data *interactionResponseData `json:"data,omitempty"`
}

type interactionResponseData struct {
	Content string `json:"content"`
}

// requesterID extracts the stable user identifier, preferring the guild
// member payload over the DM user payload.
func (i *Interaction) requesterID() string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// stringOption returns the named option decoded as a string.
func stringOption(opts []Option, name string) string {
	for _, o := range opts {
		if o.Name != name {
			continue
		}
		var s string
		if err := json.Unmarshal(o.Value, &s); err == nil {
			return s
		}
	}
	return ""
}

// intOption returns the named option decoded as an integer, or def when
// absent or malformed.
func intOption(opts []Option, name string, def int) int {
	for _, o := range opts {
		if o.Name != name {
			continue
		}
		var n int
		if err := json.Unmarshal(o.Value, &n); err == nil {
			return n
		}
	}
	return def
}

// subcommand returns the first subcommand option, if any.
func subcommand(opts []Option) *Option {
	for i := range opts {
		if opts[i].Type == optionTypeSubcommand {
			return &opts[i]
		}
	}
	return nil
}
