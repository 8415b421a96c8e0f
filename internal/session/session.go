package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/christopherklint97/claim/internal/cache"
	"github.com/christopherklint97/claim/internal/claim"
	"github.com/christopherklint97/claim/internal/monday"
	"github.com/christopherklint97/claim/internal/store"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeAddEntry
	ModeEditEntry
	ModeDeleteEntry
	ModeHelp
	ModeReport
)

func (m Mode) String() string {
	switch m {
	case ModeAddEntry:
		return "add"
	case ModeEditEntry:
		return "edit"
	case ModeDeleteEntry:
		return "delete"
	case ModeHelp:
		return "help"
	case ModeReport:
		return "report"
	}
	return "normal"
}

// Remote is the subset of the board client a session needs.
type Remote interface {
	GroupIDForYear(ctx context.Context, year int) (string, error)
	QueryItems(ctx context.Context, q monday.ItemQuery) ([]monday.Item, error)
	CreateItem(ctx context.Context, groupID, name string, columns map[string]any) (string, error)
	UpdateItem(ctx context.Context, itemID string, columns map[string]any) error
	DeleteItem(ctx context.Context, itemID string) error
}

// Journal records every attempted board write.
type Journal interface {
	RecordOperation(op *store.Operation) (int64, error)
}

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

type Message struct {
	Level Level
	Text  string
}

const maxMessages = 5

type Config struct {
	Remote  Remote
	Cache   *cache.Cache
	Journal Journal
	User    monday.User
	Logger  *slog.Logger
	Now     func() time.Time
	Keys    *KeyMap

	CacheMaxAge  time.Duration
	RefreshDays  int
	RefreshLimit int
	WeekLimit    int
}

// Session is the interactive state machine. It is driven by HandleKey and
// must not be used from more than one goroutine at a time.
type Session struct {
	remote  Remote
	cache   *cache.Cache
	journal Journal
	user    monday.User
	logger  *slog.Logger
	now     func() time.Time
	keys    KeyMap

	cacheMaxAge  time.Duration
	refreshDays  int
	refreshLimit int
	weekLimit    int

	groups map[int]string

	weekStart     time.Time
	selectedDay   int
	selectedEntry int
	reportRow     int
	mode          Mode
	entries       []claim.Entry
	messages      []Message
	loading       bool

	form      *Form
	editingID string

	deleting    *claim.Entry
	deleteDay   int
	deleteIndex int
}

// New builds a session on the current week. The entry cache is refreshed
// first when it is stale. Any failure of that initial load is returned.
func New(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.New()
	}
	if cfg.CacheMaxAge <= 0 {
		cfg.CacheMaxAge = 24 * time.Hour
	}
	if cfg.RefreshDays <= 0 {
		cfg.RefreshDays = 28
	}
	if cfg.RefreshLimit <= 0 {
		cfg.RefreshLimit = 500
	}
	if cfg.WeekLimit <= 0 {
		cfg.WeekLimit = 100
	}
	keys := DefaultKeyMap()
	if cfg.Keys != nil {
		keys = *cfg.Keys
	}

	s := &Session{
		remote:        cfg.Remote,
		cache:         cfg.Cache,
		journal:       cfg.Journal,
		user:          cfg.User,
		logger:        cfg.Logger,
		now:           cfg.Now,
		keys:          keys,
		cacheMaxAge:   cfg.CacheMaxAge,
		refreshDays:   cfg.RefreshDays,
		refreshLimit:  cfg.RefreshLimit,
		weekLimit:     cfg.WeekLimit,
		groups:        make(map[int]string),
		selectedEntry: -1,
		reportRow:     -1,
	}
	s.weekStart, s.selectedDay = s.todayPosition()

	if s.cache.IsStale(s.cacheMaxAge) {
		if err := s.refreshCache(ctx); err != nil {
			return nil, fmt.Errorf("refreshing cache: %w", err)
		}
	}
	if err := s.loadWeek(ctx); err != nil {
		return nil, fmt.Errorf("loading week: %w", err)
	}
	s.postLoaded()
	return s, nil
}

func (s *Session) today() time.Time {
	return claim.DateOf(s.now())
}

// todayPosition returns the current week and today's business-day index,
// or -1 on weekends.
func (s *Session) todayPosition() (time.Time, int) {
	today := s.today()
	start := claim.WeekStart(today)
	if claim.IsWeekend(today) {
		return start, -1
	}
	return start, int(today.Sub(start).Hours() / 24)
}

// HandleKey interprets one key press in the current mode. It reports
// whether the user asked to quit. Remote failures become messages.
func (s *Session) HandleKey(ctx context.Context, k Key) (quit bool) {
	switch s.mode {
	case ModeNormal:
		return s.handleNormal(ctx, k)
	case ModeHelp:
		s.mode = ModeNormal
	case ModeReport:
		s.handleReport(ctx, k)
	case ModeAddEntry, ModeEditEntry:
		s.handleForm(ctx, k)
	case ModeDeleteEntry:
		s.handleDelete(ctx, k)
	}
	return false
}

func (s *Session) handleNormal(ctx context.Context, k Key) bool {
	switch {
	case key.Matches(k, s.keys.Quit):
		return true
	case key.Matches(k, s.keys.Help):
		s.mode = ModeHelp
	case key.Matches(k, s.keys.NextWeek):
		s.shiftWeek(ctx, 7)
	case key.Matches(k, s.keys.PrevWeek):
		s.shiftWeek(ctx, -7)
	case key.Matches(k, s.keys.Left):
		s.moveDay(-1)
	case key.Matches(k, s.keys.Right):
		s.moveDay(1)
	case key.Matches(k, s.keys.Up):
		s.moveEntry(-1)
	case key.Matches(k, s.keys.Down):
		s.moveEntry(1)
	case key.Matches(k, s.keys.Day):
		s.selectedDay = int(k[0] - '1')
		s.selectedEntry = -1
	case key.Matches(k, s.keys.Refresh):
		s.clearMessages()
		if err := s.refreshCache(ctx); err != nil {
			s.post(LevelError, "Failed to refresh cache: "+err.Error())
			return false
		}
		s.reload(ctx)
	case key.Matches(k, s.keys.Report):
		s.mode = ModeReport
		s.reportRow = 0
	case key.Matches(k, s.keys.Add):
		s.startAdd()
	case key.Matches(k, s.keys.Edit):
		s.startEdit()
	case key.Matches(k, s.keys.Delete):
		s.startDelete()
	case key.Matches(k, s.keys.Today):
		s.weekStart, s.selectedDay = s.todayPosition()
		s.selectedEntry = -1
		s.reload(ctx)
	}
	return false
}

func (s *Session) handleReport(ctx context.Context, k Key) {
	switch {
	case key.Matches(k, s.keys.CloseReport):
		s.mode = ModeNormal
		s.reportRow = -1
	case key.Matches(k, s.keys.NextWeek):
		s.shiftWeek(ctx, 7)
		s.reportRow = 0
	case key.Matches(k, s.keys.PrevWeek):
		s.shiftWeek(ctx, -7)
		s.reportRow = 0
	case key.Matches(k, s.keys.Up):
		if s.reportRow > 0 {
			s.reportRow--
		}
	case key.Matches(k, s.keys.Down):
		if s.reportRow < ReportMaxRow(s.entries) {
			s.reportRow++
		}
	}
}

func (s *Session) shiftWeek(ctx context.Context, days int) {
	s.weekStart = s.weekStart.AddDate(0, 0, days)
	s.selectedDay = -1
	s.selectedEntry = -1
	s.reload(ctx)
}

// reload replaces the week's entries and reports the outcome as a message.
func (s *Session) reload(ctx context.Context) {
	if err := s.loadWeek(ctx); err != nil {
		s.post(LevelError, "Failed to load week: "+err.Error())
		return
	}
	s.postLoaded()
}

func (s *Session) postLoaded() {
	s.post(LevelSuccess, fmt.Sprintf("Loaded %d entries for week of %s",
		len(s.entries), s.weekStart.Format("Jan 02, 2006")))
}

func (s *Session) moveDay(delta int) {
	switch {
	case s.selectedDay < 0 && delta < 0:
		s.selectedDay = 4
	case s.selectedDay < 0:
		s.selectedDay = 0
	default:
		s.selectedDay = min(max(s.selectedDay+delta, 0), 4)
	}
	s.selectedEntry = -1
}

func (s *Session) moveEntry(delta int) {
	if s.selectedDay < 0 {
		return
	}
	n := len(s.EntriesOn(s.selectedDay))
	if n == 0 {
		return
	}
	switch {
	case s.selectedEntry < 0 && delta < 0:
		s.selectedEntry = n - 1
	case s.selectedEntry < 0:
		s.selectedEntry = 0
	default:
		s.selectedEntry = min(max(s.selectedEntry+delta, 0), n-1)
	}
}

func (s *Session) startAdd() {
	date := s.today()
	if d, ok := s.SelectedDate(); ok {
		date = d
	}
	s.form = NewForm(date)
	s.editingID = ""
	s.mode = ModeAddEntry
	s.clearMessages()
	s.post(LevelInfo, "Add mode - Tab to navigate fields, Enter to save, Esc to cancel")
}

func (s *Session) startEdit() {
	e, ok := s.SelectedEntry()
	if !ok {
		return
	}
	s.form = FormFromEntry(e)
	s.editingID = e.ID
	s.mode = ModeEditEntry
	s.clearMessages()
	s.post(LevelInfo, "Edit mode - Tab to navigate fields, Enter to save, Esc to cancel")
}

func (s *Session) startDelete() {
	e, ok := s.SelectedEntry()
	if !ok {
		return
	}
	s.deleting = &e
	s.deleteDay = s.selectedDay
	s.deleteIndex = s.selectedEntry
	s.mode = ModeDeleteEntry
	s.clearMessages()
	s.post(LevelWarning, "DELETE CONFIRMATION - Press 'y' to confirm, any other key to cancel")
}

func (s *Session) handleForm(ctx context.Context, k Key) {
	f := s.form
	if f == nil {
		s.mode = ModeNormal
		return
	}
	list := s.CacheEntries()

	switch {
	case key.Matches(k, s.keys.Cancel):
		verb := "Add"
		if s.mode == ModeEditEntry {
			verb = "Edit"
		}
		s.closeForm()
		s.clearMessages()
		s.post(LevelInfo, verb+" cancelled")
	case key.Matches(k, s.keys.NextField):
		if f.ListFocus {
			f.ListFocus = false
		} else {
			f.NextField()
		}
	case key.Matches(k, s.keys.PrevField):
		if f.ListFocus {
			f.ListFocus = false
		} else {
			f.PrevField()
		}
	case key.Matches(k, s.keys.FocusList):
		if f.ListFocus || len(list) > 0 {
			f.ListFocus = !f.ListFocus
			f.ListIndex = min(f.ListIndex, max(len(list)-1, 0))
		}
	case key.Matches(k, s.keys.Left):
		if !f.ListFocus {
			f.CursorLeft()
		}
	case key.Matches(k, s.keys.Right):
		if !f.ListFocus {
			f.CursorRight()
		}
	case key.Matches(k, s.keys.CursorStart):
		if !f.ListFocus {
			f.CursorStart()
		}
	case key.Matches(k, s.keys.CursorEnd):
		if !f.ListFocus {
			f.CursorEnd()
		}
	case key.Matches(k, s.keys.Up):
		if f.ListFocus {
			if f.ListIndex > 0 {
				f.ListIndex--
			}
		} else {
			f.PrevField()
		}
	case key.Matches(k, s.keys.Down):
		if f.ListFocus {
			if f.ListIndex < len(list)-1 {
				f.ListIndex++
			}
		} else {
			f.NextField()
		}
	case key.Matches(k, s.keys.Submit):
		if f.ListFocus {
			if f.ListIndex >= 0 && f.ListIndex < len(list) {
				f.ApplyCacheEntry(list[f.ListIndex])
			}
			return
		}
		s.submit(ctx)
	case key.Matches(k, s.keys.Backspace):
		if !f.ListFocus {
			f.Backspace()
		}
	case key.Matches(k, s.keys.DeleteChar):
		if !f.ListFocus {
			f.DeleteChar()
		}
	default:
		r, ok := k.Rune()
		if !ok {
			return
		}
		s.formRune(f, r, list)
	}
}

func (s *Session) formRune(f *Form, r rune, list []cache.Entry) {
	if r >= '0' && r <= '9' {
		d := int(r - '0')
		switch f.Current {
		case FieldActivity:
			if a := claim.Activity(d); a.Known() {
				f.SetActivity(a)
			}
			return
		case FieldCustomer, FieldWorkItem:
			if d < len(list) {
				f.ApplyCacheEntry(list[d])
				return
			}
		}
	}
	if !f.ListFocus {
		f.Insert(r)
	}
}

func (s *Session) closeForm() {
	s.form = nil
	s.editingID = ""
	s.mode = ModeNormal
}

func (s *Session) submit(ctx context.Context) {
	entry, err := s.form.Validate(s.now())
	if err != nil {
		s.clearMessages()
		s.post(LevelError, "Validation error: "+err.Error())
		return
	}

	adding := s.mode == ModeAddEntry
	entry.ID = s.editingID
	s.closeForm()
	s.clearMessages()

	s.loading = true
	action := store.ActionUpdate
	if adding {
		action = store.ActionAdd
		entry.ID, err = s.create(ctx, entry)
	} else {
		err = s.remote.UpdateItem(ctx, entry.ID, entry.Columns(""))
	}
	s.loading = false
	s.record(action, entry, err)

	if err != nil {
		s.logger.Error("saving entry failed", "action", action, "error", err)
		if adding {
			s.post(LevelError, "Failed to add entry: "+err.Error())
		} else {
			s.post(LevelError, "Failed to update entry: "+err.Error())
		}
		return
	}

	if adding {
		s.post(LevelSuccess, "Entry added successfully")
	} else {
		s.post(LevelSuccess, "Entry updated successfully")
	}
	s.logger.Info("entry saved", "action", action, "id", entry.ID, "date", claim.FormatDate(entry.Date))

	s.cache.Upsert(s.user.ID, entry.Customer, entry.WorkItem, claim.FormatDate(entry.Date))
	if err := s.cache.Save(); err != nil {
		s.post(LevelWarning, "Failed to save cache: "+err.Error())
	}
	if err := s.loadWeek(ctx); err != nil {
		s.post(LevelError, "Failed to reload week: "+err.Error())
	}
}

func (s *Session) create(ctx context.Context, e claim.Entry) (string, error) {
	groupID, err := s.groupFor(ctx, e.Date.Year())
	if err != nil {
		return "", err
	}
	return s.remote.CreateItem(ctx, groupID, s.user.Name, e.Columns(s.user.ID))
}

func (s *Session) handleDelete(ctx context.Context, k Key) {
	target, day, idx := s.deleting, s.deleteDay, s.deleteIndex
	s.deleting = nil
	s.mode = ModeNormal
	s.clearMessages()

	if !key.Matches(k, s.keys.Confirm) || target == nil {
		s.post(LevelInfo, "Delete cancelled")
		return
	}

	s.loading = true
	err := s.remote.DeleteItem(ctx, target.ID)
	s.loading = false
	s.record(store.ActionDelete, *target, err)
	if err != nil {
		s.logger.Error("deleting entry failed", "id", target.ID, "error", err)
		s.post(LevelError, "Failed to delete entry: "+err.Error())
		return
	}
	s.post(LevelSuccess, "Entry deleted successfully")
	s.logger.Info("entry deleted", "id", target.ID)

	if err := s.loadWeek(ctx); err != nil {
		s.post(LevelError, "Failed to reload week: "+err.Error())
	}
	s.selectedDay = day
	remaining := len(s.EntriesOn(day))
	switch {
	case remaining == 0:
		s.selectedEntry = -1
	case idx >= remaining:
		s.selectedEntry = remaining - 1
	default:
		s.selectedEntry = idx
	}
}

func (s *Session) record(action string, e claim.Entry, err error) {
	if s.journal == nil {
		return
	}
	if _, jerr := s.journal.RecordOperation(NewOperation(action, e, err)); jerr != nil {
		s.logger.Warn("journal write failed", "error", jerr)
	}
}

// NewOperation builds the journal row for a write of e. A non-nil err
// marks it failed.
func NewOperation(action string, e claim.Entry, err error) *store.Operation {
	op := &store.Operation{
		Action:   action,
		ItemID:   e.ID,
		Date:     claim.FormatDate(e.Date),
		Activity: int(e.Activity),
		Customer: e.Customer,
		WorkItem: e.WorkItem,
		Hours:    e.Hours,
		Comment:  e.Comment,
		Status:   store.StatusLogged,
	}
	if err != nil {
		op.Status = store.StatusFailed
		op.Error = err.Error()
	}
	return op
}

func (s *Session) groupFor(ctx context.Context, year int) (string, error) {
	if id, ok := s.groups[year]; ok {
		return id, nil
	}
	id, err := s.remote.GroupIDForYear(ctx, year)
	if err != nil {
		return "", err
	}
	s.groups[year] = id
	return id, nil
}

// loadWeek replaces the loaded entries with the business days of the
// displayed week.
func (s *Session) loadWeek(ctx context.Context) error {
	s.loading = true
	defer func() { s.loading = false }()

	entries, err := queryDates(ctx, s.remote, s.groupFor, s.user.ID, claim.WeekDates(s.weekStart), s.weekLimit)
	if err != nil {
		return err
	}
	s.entries = entries
	s.clampSelection()
	s.logger.Debug("week loaded", "week", claim.FormatDate(s.weekStart), "entries", len(entries))
	return nil
}

// LoadEntries returns the user's entries dated on any of dates, ordered
// by date. Each year group the dates touch is queried once.
func LoadEntries(ctx context.Context, r Remote, userID string, dates []time.Time, limit int) ([]claim.Entry, error) {
	return queryDates(ctx, r, r.GroupIDForYear, userID, dates, limit)
}

func queryDates(ctx context.Context, r Remote, group func(context.Context, int) (string, error),
	userID string, dates []time.Time, limit int) ([]claim.Entry, error) {
	byGroup := make(map[string][]string)
	wanted := make(map[string]bool)
	var order []string
	for _, d := range dates {
		gid, err := group(ctx, d.Year())
		if err != nil {
			return nil, err
		}
		if _, seen := byGroup[gid]; !seen {
			order = append(order, gid)
		}
		day := claim.FormatDate(d)
		byGroup[gid] = append(byGroup[gid], day)
		wanted[day] = true
	}

	var entries []claim.Entry
	for _, gid := range order {
		items, err := r.QueryItems(ctx, monday.ItemQuery{
			GroupID: gid,
			UserID:  userID,
			Dates:   byGroup[gid],
			Limit:   limit,
		})
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			e, ok := claim.FromItem(it)
			if !ok || !wanted[claim.FormatDate(e.Date)] {
				continue
			}
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries, nil
}

func (s *Session) clampSelection() {
	if s.selectedDay < 0 || s.selectedDay > 4 {
		s.selectedEntry = -1
		return
	}
	n := len(s.EntriesOn(s.selectedDay))
	if s.selectedEntry >= n {
		s.selectedEntry = n - 1
	}
}

// refreshCache merges billable pairs used within the refresh window into
// the entry cache.
func (s *Session) refreshCache(ctx context.Context) error {
	s.loading = true
	defer func() { s.loading = false }()

	used, err := RecentPairs(ctx, s.remote, s.user.ID, s.today(), s.refreshDays, s.refreshLimit)
	if err != nil {
		return err
	}
	s.cache.Merge(s.user.ID, used)
	if err := s.cache.Save(); err != nil {
		s.post(LevelWarning, "Failed to save cache: "+err.Error())
	}
	s.post(LevelSuccess, fmt.Sprintf("Cache refreshed with %d unique entries", len(s.cache.Unique(s.user.ID))))
	return nil
}

// RecentPairs returns the customer and work item pairs of the user's
// billable entries dated within the last days before today, inclusive.
func RecentPairs(ctx context.Context, r Remote, userID string, today time.Time, days, limit int) ([]cache.Entry, error) {
	today = claim.DateOf(today)
	from := today.AddDate(0, 0, -days)

	var groups []string
	seen := make(map[string]bool)
	for _, year := range []int{from.Year(), today.Year()} {
		gid, err := r.GroupIDForYear(ctx, year)
		if err != nil {
			return nil, err
		}
		if !seen[gid] {
			seen[gid] = true
			groups = append(groups, gid)
		}
	}

	var used []cache.Entry
	for _, gid := range groups {
		items, err := r.QueryItems(ctx, monday.ItemQuery{GroupID: gid, UserID: userID, Limit: limit})
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			e, ok := claim.FromItem(it)
			if !ok || e.Activity != claim.Billable || e.Customer == "" || e.WorkItem == "" {
				continue
			}
			if e.Date.Before(from) || e.Date.After(today) {
				continue
			}
			used = append(used, cache.Entry{Customer: e.Customer, WorkItem: e.WorkItem, LastUsed: claim.FormatDate(e.Date)})
		}
	}
	return used, nil
}

func (s *Session) post(level Level, text string) {
	s.messages = append(s.messages, Message{Level: level, Text: text})
	if len(s.messages) > maxMessages {
		s.messages = s.messages[len(s.messages)-maxMessages:]
	}
}

func (s *Session) clearMessages() {
	s.messages = nil
}

func (s *Session) Mode() Mode                  { return s.mode }
func (s *Session) Keys() KeyMap                { return s.keys }
func (s *Session) User() monday.User           { return s.user }
func (s *Session) WeekStart() time.Time        { return s.weekStart }
func (s *Session) Entries() []claim.Entry      { return s.entries }
func (s *Session) Messages() []Message         { return s.messages }
func (s *Session) Loading() bool               { return s.loading }
func (s *Session) Form() *Form                 { return s.form }
func (s *Session) SelectedDay() int            { return s.selectedDay }
func (s *Session) SelectedEntryIndex() int     { return s.selectedEntry }
func (s *Session) ReportRow() int              { return s.reportRow }
func (s *Session) PendingDelete() *claim.Entry { return s.deleting }

// WeekDates returns Monday through Friday of the displayed week.
func (s *Session) WeekDates() []time.Time {
	return claim.WeekDates(s.weekStart)
}

func (s *Session) SelectedDate() (time.Time, bool) {
	if s.selectedDay < 0 || s.selectedDay > 4 {
		return time.Time{}, false
	}
	return s.weekStart.AddDate(0, 0, s.selectedDay), true
}

// EntriesOn returns the loaded entries of business day i of the week.
func (s *Session) EntriesOn(day int) []claim.Entry {
	if day < 0 || day > 4 {
		return nil
	}
	date := s.weekStart.AddDate(0, 0, day)
	var out []claim.Entry
	for _, e := range s.entries {
		if e.Date.Equal(date) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Session) SelectedEntry() (claim.Entry, bool) {
	entries := s.EntriesOn(s.selectedDay)
	if s.selectedEntry < 0 || s.selectedEntry >= len(entries) {
		return claim.Entry{}, false
	}
	return entries[s.selectedEntry], true
}

// CacheEntries is the autocomplete list for the current user.
func (s *Session) CacheEntries() []cache.Entry {
	return s.cache.Unique(s.user.ID)
}

func (s *Session) Report() []ReportRow {
	return BuildReport(s.entries, s.weekStart)
}

func (s *Session) WeekTotal() float64 {
	var t float64
	for _, e := range s.entries {
		t += e.Hours
	}
	return t
}
