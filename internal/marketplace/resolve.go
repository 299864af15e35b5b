package marketplace

import (
	"context"
	"strings"
)

// ResolveXMLID finds the marketplace record for an exact xmlId using
// the typeahead endpoint. Returns nil when nothing matches exactly;
// the match is case-insensitive because the marketplace is.
func (c *Client) ResolveXMLID(ctx context.Context, xmlID string) (*Plugin, error) {
	plugins, err := c.Typeahead(ctx, xmlID)
	if err != nil {
		return nil, err
	}

	for _, p := range plugins {
		if strings.EqualFold(p.XMLID, xmlID) {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}
