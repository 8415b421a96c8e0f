package monday

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Board struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Groups []Group `json:"groups"`
}

// ColumnValue is one raw cell of an item. Value holds the column's JSON
// payload as a string, Text its display rendering.
type ColumnValue struct {
	ID    string  `json:"id"`
	Value *string `json:"value"`
	Text  *string `json:"text"`
}

type Item struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	ColumnValues []ColumnValue `json:"column_values"`
}

// Column returns the cell with the given column ID.
func (it Item) Column(id string) (ColumnValue, bool) {
	for _, cv := range it.ColumnValues {
		if cv.ID == id {
			return cv, true
		}
	}
	return ColumnValue{}, false
}

// ItemQuery restricts an items query to one group and one assignee.
// An empty Dates list leaves the date column unrestricted.
type ItemQuery struct {
	GroupID string
	UserID  string
	Dates   []string
	Limit   int
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type gqlResponse[T any] struct {
	Data         T          `json:"data"`
	Errors       []gqlError `json:"errors"`
	ErrorMessage string     `json:"error_message"`
	ErrorCode    string     `json:"error_code"`
}

type queryRule struct {
	ColumnID     string   `json:"column_id"`
	CompareValue []string `json:"compare_value"`
	Operator     string   `json:"operator"`
}
