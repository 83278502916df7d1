package sprout

import (
	"context"
	"fmt"
	"time"
)

// AccountTTL is how long a host may cache the account resource.
const AccountTTL = 24 * time.Hour

// ConnectionName returns a human-readable label for the authenticated account,
// formatted as "Company (First Last)".
func (c *Client) ConnectionName(ctx context.Context) (string, error) {
	var account Account
	if err := c.get(ctx, "account", AccountTTL, nil, &account); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%s %s)", account.Company, account.FirstName, account.LastName), nil
}
