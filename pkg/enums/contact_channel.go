package enums

import "fmt"

// ContactChannel represents the contact_channel enum for party contact rows.
type ContactChannel string

const (
	ContactChannelEmail ContactChannel = "email"
	ContactChannelPhone ContactChannel = "phone"
)

var validContactChannels = []ContactChannel{
	ContactChannelEmail,
	ContactChannelPhone,
}

// String implements fmt.Stringer.
func (c ContactChannel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ContactChannel.
func (c ContactChannel) IsValid() bool {
	for _, candidate := range validContactChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContactChannel converts raw input into a ContactChannel.
func ParseContactChannel(value string) (ContactChannel, error) {
	for _, candidate := range validContactChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contact channel %q", value)
}
