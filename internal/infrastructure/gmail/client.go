package gmail

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/api/gmail/v1"

	"jobtracker/internal/domain/email"
)

const userID = "me"

// Client implements the read-only Gmail operations the tracker needs (adapter)
type Client struct {
	Srv   *gmail.Service
	query string
}

// NewClient creates a Gmail client bound to a single search query.
func NewClient(srv *gmail.Service, query string) *Client {
	return &Client{
		Srv:   srv,
		query: query,
	}
}

func (c *Client) Query() string {
	return c.query
}

// SearchMessages returns the IDs of the first result page for the bound query.
func (c *Client) SearchMessages(ctx context.Context) ([]string, error) {
	resp, err := c.Srv.Users.Messages.List(userID).
		Q(c.query).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "gmail list messages")
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}

	return ids, nil
}

func (c *Client) FetchEmail(ctx context.Context, messageID string) (*email.Email, error) {
	msg, err := c.Srv.Users.Messages.Get(userID, messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "gmail get message %s", messageID)
	}

	return ExtractEmail(msg), nil
}
