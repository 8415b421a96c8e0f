package monday

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

const itemFields = `id name column_values { id text value }`

func (c *Client) Me(ctx context.Context) (*User, error) {
	data, err := graphql[struct {
		Me User `json:"me"`
	}](ctx, c, `query { me { id name email } }`, nil)
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}
	if data.Me.ID == "" {
		return nil, fmt.Errorf("getting current user: empty response")
	}
	return &data.Me, nil
}

func (c *Client) Board(ctx context.Context) (*Board, error) {
	data, err := graphql[struct {
		Boards []Board `json:"boards"`
	}](ctx, c, `query ($boardId: [ID!]) { boards(ids: $boardId) { id name groups { id title } } }`,
		map[string]any{"boardId": []string{c.boardID}})
	if err != nil {
		return nil, fmt.Errorf("getting board %s: %w", c.boardID, err)
	}
	if len(data.Boards) == 0 {
		return nil, fmt.Errorf("getting board %s: %w", c.boardID, ErrNotFound)
	}
	return &data.Boards[0], nil
}

// GroupStatePrefix starts every state key holding a memoised group ID.
const GroupStatePrefix = "group:"

// GroupIDForYear returns the ID of the board group titled with the given
// year, or the configured default group when none matches.
func (c *Client) GroupIDForYear(ctx context.Context, year int) (string, error) {
	title := strconv.Itoa(year)
	key := GroupStatePrefix + c.boardID + ":" + title
	if c.state != nil {
		if id, err := c.state.GetState(key); err == nil && id != "" {
			return id, nil
		}
	}

	board, err := c.Board(ctx)
	if err != nil {
		return "", err
	}
	for _, g := range board.Groups {
		if g.Title == title {
			if c.state != nil {
				if err := c.state.SetState(key, g.ID); err != nil {
					c.logger.Warn("failed to remember group", "year", year, "error", err)
				}
			}
			return g.ID, nil
		}
	}

	c.logger.Debug("no group for year, using default", "year", year, "group", c.defaultGrp)
	return c.defaultGrp, nil
}

// QueryItems returns the items of one group assigned to q.UserID, limited
// to q.Dates when given.
func (c *Client) QueryItems(ctx context.Context, q ItemQuery) ([]Item, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	rules := []queryRule{{
		ColumnID:     "person",
		CompareValue: []string{"person-" + q.UserID},
		Operator:     "any_of",
	}}
	if len(q.Dates) > 0 {
		values := make([]string, 0, 2*len(q.Dates))
		for _, d := range q.Dates {
			values = append(values, "EXACT", d)
		}
		rules = append(rules, queryRule{ColumnID: "date4", CompareValue: values, Operator: "any_of"})
	}

	data, err := graphql[struct {
		Boards []struct {
			Groups []struct {
				ItemsPage struct {
					Items []Item `json:"items"`
				} `json:"items_page"`
			} `json:"groups"`
		} `json:"boards"`
	}](ctx, c, `query ($boardId: [ID!], $groupId: [String], $limit: Int!, $rules: [ItemsQueryRule!]) {
  boards(ids: $boardId) {
    groups(ids: $groupId) {
      items_page(limit: $limit, query_params: {rules: $rules, operator: and}) {
        items { `+itemFields+` }
      }
    }
  }
}`, map[string]any{
		"boardId": []string{c.boardID},
		"groupId": []string{q.GroupID},
		"limit":   q.Limit,
		"rules":   rules,
	})
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}

	var items []Item
	for _, b := range data.Boards {
		for _, g := range b.Groups {
			items = append(items, g.ItemsPage.Items...)
		}
	}
	return items, nil
}

// CreateItem creates an item in the group and returns its ID.
func (c *Client) CreateItem(ctx context.Context, groupID, name string, columns map[string]any) (string, error) {
	payload, err := json.Marshal(columns)
	if err != nil {
		return "", fmt.Errorf("encoding column values: %w", err)
	}
	data, err := graphql[struct {
		CreateItem struct {
			ID string `json:"id"`
		} `json:"create_item"`
	}](ctx, c, `mutation ($boardId: ID!, $groupId: String!, $name: String!, $values: JSON!) {
  create_item(board_id: $boardId, group_id: $groupId, item_name: $name, column_values: $values) { id }
}`, map[string]any{
		"boardId": c.boardID,
		"groupId": groupID,
		"name":    name,
		"values":  string(payload),
	})
	if err != nil {
		return "", fmt.Errorf("creating item: %w", err)
	}
	if data.CreateItem.ID == "" {
		return "", fmt.Errorf("creating item: no ID returned")
	}
	return data.CreateItem.ID, nil
}

func (c *Client) UpdateItem(ctx context.Context, itemID string, columns map[string]any) error {
	payload, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("encoding column values: %w", err)
	}
	_, err = graphql[json.RawMessage](ctx, c, `mutation ($boardId: ID!, $itemId: ID!, $values: JSON!) {
  change_multiple_column_values(board_id: $boardId, item_id: $itemId, column_values: $values) { id }
}`, map[string]any{
		"boardId": c.boardID,
		"itemId":  itemID,
		"values":  string(payload),
	})
	if err != nil {
		return fmt.Errorf("updating item %s: %w", itemID, err)
	}
	return nil
}

func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	_, err := graphql[json.RawMessage](ctx, c, `mutation ($itemId: ID!) { delete_item(item_id: $itemId) { id } }`,
		map[string]any{"itemId": itemID})
	if err != nil {
		return fmt.Errorf("deleting item %s: %w", itemID, err)
	}
	return nil
}

// Item fetches one item with all its column values.
func (c *Client) Item(ctx context.Context, itemID string) (*Item, error) {
	data, err := graphql[struct {
		Items []Item `json:"items"`
	}](ctx, c, `query ($ids: [ID!]) { items(ids: $ids) { `+itemFields+` } }`,
		map[string]any{"ids": []string{itemID}})
	if err != nil {
		return nil, fmt.Errorf("getting item %s: %w", itemID, err)
	}
	if len(data.Items) == 0 {
		return nil, fmt.Errorf("getting item %s: %w", itemID, ErrNotFound)
	}
	return &data.Items[0], nil
}
