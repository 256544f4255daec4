package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kalkin/glv/internal/config"
	"github.com/kalkin/glv/internal/forkpoint"
	"github.com/kalkin/glv/internal/history"
	"github.com/kalkin/glv/internal/layout"
	"github.com/kalkin/glv/internal/models"
)

const forkPointPollInterval = 100 * time.Millisecond

type errMsg struct {
	err error
}

type commitsMsg struct {
	commits []*models.Commit
}

type expandedMsg struct {
	id      models.Oid
	commits []*models.Commit
}

type tickMsg time.Time

func pollTick() tea.Cmd {
	return tea.Tick(forkPointPollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// HistoryView owns the materialized commit list. Commits are fetched
// lazily one page at a time; unfolding a merge splices its child history
// into the list right after it, folding removes every following row with a
// greater level.
type HistoryView struct {
	cfg      config.Config
	revRange string
	paths    []string

	builder *history.Builder
	worker  *forkpoint.Worker

	commits []*models.Commit
	total   int

	cursor int
	offset int
	width  int
	height int

	keys      keyMap
	search    textinput.Model
	searching bool
	lastQuery string
	// pending actions re-run after the next page arrives
	pendingQuery  string
	pendingFollow models.Oid
	// loading is set while a fill-up request is in flight so key repeats
	// at the window edge cannot fetch the same page twice
	loading bool

	dateWidth int
	nameWidth int
}

// NewHistoryView sets up the view. total is the first-parent length of the
// revision range, counted up front by the caller.
func NewHistoryView(cfg config.Config, builder *history.Builder, worker *forkpoint.Worker, revRange string, paths []string, total int) *HistoryView {
	search := textinput.New()
	search.Prompt = "/"
	return &HistoryView{
		cfg:       cfg,
		revRange:  revRange,
		paths:     paths,
		builder:   builder,
		worker:    worker,
		total:     total,
		keys:      defaultKeyMap(),
		search:    search,
		nameWidth: cfg.AuthorNameWidth,
		dateWidth: cfg.AuthorRelDateWidth,
	}
}

func (h *HistoryView) Init() tea.Cmd {
	return tea.Batch(h.fillUp(), pollTick())
}

// lineCount is the current number of rows, expansions included.
func (h *HistoryView) lineCount() int {
	extra := 0
	for _, c := range h.commits {
		if c.Level > 0 {
			extra++
		}
	}
	return h.total + extra
}

func (h *HistoryView) mainlineCount() int {
	n := 0
	for _, c := range h.commits {
		if c.Level == 0 {
			n++
		}
	}
	return n
}

func (h *HistoryView) lastMainline() *models.Commit {
	for i := len(h.commits) - 1; i >= 0; i-- {
		if h.commits[i].Level == 0 {
			return h.commits[i]
		}
	}
	return nil
}

// fillUp fetches the next page of mainline commits. At most one request
// is in flight at a time.
func (h *HistoryView) fillUp() tea.Cmd {
	if h.loading {
		return nil
	}
	skip := h.mainlineCount()
	if h.total > 0 && skip >= h.total {
		return nil
	}
	h.loading = true
	above := h.lastMainline()
	builder := h.builder
	revRange, paths := h.revRange, h.paths
	max := h.cfg.MaxCommitsPerFill
	return func() tea.Msg {
		commits, err := builder.CommitsForRange(revRange, 0, above, paths, skip, max)
		if err != nil {
			return errMsg{err}
		}
		return commitsMsg{commits}
	}
}

func (h *HistoryView) expand(c *models.Commit) tea.Cmd {
	builder := h.builder
	return func() tea.Msg {
		commits, err := builder.ChildHistory(c)
		if err != nil {
			return errMsg{err}
		}
		return expandedMsg{id: c.ID, commits: commits}
	}
}

func (h *HistoryView) Update(msg tea.Msg) (*HistoryView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.width = msg.Width
		h.height = msg.Height

	case tickMsg:
		h.drainForkPoints()
		return h, pollTick()

	case commitsMsg:
		h.loading = false
		h.append(msg.commits)
		return h, h.resumePending()

	case expandedMsg:
		h.splice(msg.id, msg.commits)

	case tea.KeyMsg:
		if h.searching {
			return h.updateSearch(msg)
		}
		return h.updateKeys(msg)
	}
	return h, nil
}

func (h *HistoryView) updateKeys(msg tea.KeyMsg) (*HistoryView, tea.Cmd) {
	switch {
	case key.Matches(msg, h.keys.Down):
		return h, h.moveCursor(1)
	case key.Matches(msg, h.keys.Up):
		return h, h.moveCursor(-1)
	case key.Matches(msg, h.keys.Top):
		h.cursor = 0
		h.offset = 0
	case key.Matches(msg, h.keys.Bottom):
		h.cursor = len(h.commits) - 1
		h.scrollToCursor()
	case key.Matches(msg, h.keys.Fold):
		return h, h.toggleFold()
	case key.Matches(msg, h.keys.Parent):
		h.goToParent()
	case key.Matches(msg, h.keys.Follow):
		return h, h.followLink()
	case key.Matches(msg, h.keys.Search):
		h.searching = true
		h.search.SetValue("")
		return h, h.search.Focus()
	case key.Matches(msg, h.keys.Next):
		return h, h.applySearch(h.lastQuery, h.cursor+1)
	case key.Matches(msg, h.keys.Prev):
		h.searchBackward(h.lastQuery, h.cursor-1)
	}
	return h, nil
}

func (h *HistoryView) updateSearch(msg tea.KeyMsg) (*HistoryView, tea.Cmd) {
	switch msg.String() {
	case "enter":
		h.searching = false
		h.search.Blur()
		h.lastQuery = h.search.Value()
		return h, h.applySearch(h.lastQuery, h.cursor)
	case "esc":
		h.searching = false
		h.search.Blur()
		return h, nil
	}
	var cmd tea.Cmd
	h.search, cmd = h.search.Update(msg)
	return h, cmd
}

// moveCursor shifts the cursor and triggers a fill-up when it runs into
// the unmaterialized tail.
func (h *HistoryView) moveCursor(delta int) tea.Cmd {
	next := h.cursor + delta
	if next < 0 {
		return nil
	}
	if next >= len(h.commits) {
		if h.mainlineCount() < h.total {
			return h.fillUp()
		}
		return nil
	}
	h.cursor = next
	h.scrollToCursor()
	if h.cursor >= len(h.commits)-1 && h.mainlineCount() < h.total {
		return h.fillUp()
	}
	return nil
}

func (h *HistoryView) scrollToCursor() {
	visible := h.visibleRows()
	if h.cursor < h.offset {
		h.offset = h.cursor
	}
	if h.cursor >= h.offset+visible {
		h.offset = h.cursor - visible + 1
	}
	if h.offset < 0 {
		h.offset = 0
	}
}

func (h *HistoryView) visibleRows() int {
	rows := h.height
	if h.searching {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (h *HistoryView) current() *models.Commit {
	if h.cursor < 0 || h.cursor >= len(h.commits) {
		return nil
	}
	return h.commits[h.cursor]
}

func (h *HistoryView) toggleFold() tea.Cmd {
	c := h.current()
	if c == nil || c.IsCommitLink || !c.IsMerge() {
		return nil
	}
	if c.Folded {
		return h.expand(c)
	}
	h.fold(h.cursor, c)
	return nil
}

// fold drops every row after pos that sits deeper than the commit at pos.
func (h *HistoryView) fold(pos int, c *models.Commit) {
	end := pos + 1
	for end < len(h.commits) && h.commits[end].Level > c.Level {
		end++
	}
	h.commits = append(h.commits[:pos+1], h.commits[end:]...)
	c.Folded = true
}

// splice inserts an expanded child history right after its merge commit.
func (h *HistoryView) splice(id models.Oid, children []*models.Commit) {
	pos := history.FindOid(h.commits, 0, id)
	if pos < 0 {
		return
	}
	h.commits[pos].Folded = false
	if len(children) == 0 {
		return
	}
	h.growColumns(children)
	tail := make([]*models.Commit, len(h.commits[pos+1:]))
	copy(tail, h.commits[pos+1:])
	h.commits = append(h.commits[:pos+1], children...)
	h.commits = append(h.commits, tail...)
}

func (h *HistoryView) append(commits []*models.Commit) {
	h.growColumns(commits)
	h.commits = append(h.commits, commits...)
	if h.cursor >= len(h.commits) {
		h.cursor = len(h.commits) - 1
	}
}

// growColumns widens the dynamic columns to the largest value seen so far.
func (h *HistoryView) growColumns(commits []*models.Commit) {
	for _, c := range commits {
		if h.cfg.AuthorRelDateWidth == 0 && len(c.AuthorRelDate) > h.dateWidth {
			h.dateWidth = len(c.AuthorRelDate)
		}
	}
}

func (h *HistoryView) goToParent() {
	c := h.current()
	if c == nil || c.Level == 0 {
		return
	}
	for i := h.cursor - 1; i >= 0; i-- {
		if h.commits[i].Level < c.Level {
			h.cursor = i
			h.scrollToCursor()
			return
		}
	}
}

// followLink jumps to the commit a link row points at, loading more
// history when the target is not materialized yet.
func (h *HistoryView) followLink() tea.Cmd {
	c := h.current()
	if c == nil || !c.IsCommitLink {
		return nil
	}
	if pos := history.FindOid(h.commits, h.cursor+1, c.ID); pos >= 0 {
		h.cursor = pos
		h.scrollToCursor()
		return nil
	}
	if h.mainlineCount() < h.total {
		h.pendingFollow = c.ID
		return h.fillUp()
	}
	return nil
}

// resumePending continues a search or link jump that ran out of
// materialized commits before the latest page arrived.
func (h *HistoryView) resumePending() tea.Cmd {
	if h.pendingFollow != "" {
		oid := h.pendingFollow
		h.pendingFollow = ""
		if pos := history.FindOid(h.commits, h.cursor+1, oid); pos >= 0 {
			h.cursor = pos
			h.scrollToCursor()
			return nil
		}
		if h.mainlineCount() < h.total {
			h.pendingFollow = oid
			return h.fillUp()
		}
		return nil
	}
	if h.pendingQuery != "" {
		query := h.pendingQuery
		h.pendingQuery = ""
		return h.applySearch(query, h.cursor+1)
	}
	return nil
}

// applySearch scans forward from index, filling up when the needle is not
// in the materialized window yet.
func (h *HistoryView) applySearch(query string, from int) tea.Cmd {
	if query == "" {
		return nil
	}
	for i := from; i < len(h.commits); i++ {
		if h.commits[i].Matches(query, true) {
			h.cursor = i
			h.scrollToCursor()
			return nil
		}
	}
	if h.mainlineCount() < h.total {
		h.pendingQuery = query
		return h.fillUp()
	}
	return nil
}

func (h *HistoryView) searchBackward(query string, from int) {
	if query == "" {
		return
	}
	for i := from; i >= 0; i-- {
		if i < len(h.commits) && h.commits[i].Matches(query, true) {
			h.cursor = i
			h.scrollToCursor()
			return
		}
	}
}

// drainForkPoints applies every fork-point answer that has arrived,
// matching commits by id. Unknown counts as "not a fork point".
func (h *HistoryView) drainForkPoints() {
	for {
		resp, err := h.worker.TryRecv()
		if err != nil {
			return
		}
		if pos := history.FindOid(h.commits, 0, resp.Oid); pos >= 0 {
			h.commits[pos].IsForkPoint = resp.Value == forkpoint.AnswerYes
		}
	}
}

var (
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	dateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	moduleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("blue"))
	refStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	linkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	loadingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (h *HistoryView) View() string {
	if len(h.commits) == 0 {
		return loadingStyle.Render("Loading commits...")
	}

	var b strings.Builder
	end := h.offset + h.visibleRows()
	if end > len(h.commits) {
		end = len(h.commits)
	}
	for i := h.offset; i < end; i++ {
		b.WriteString(h.renderLine(h.commits[i], i == h.cursor))
		b.WriteString("\n")
	}
	if h.searching {
		b.WriteString(h.search.View())
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// marker picks the one-cell state glyph for a row.
func marker(c *models.Commit) string {
	switch {
	case c.IsCommitLink:
		return "⭞"
	case c.IsMerge() && c.Folded:
		return "▸"
	case c.IsMerge():
		return "▾"
	case c.IsForkPoint:
		return "⑂"
	default:
		return " "
	}
}

func (h *HistoryView) renderLine(c *models.Commit, selected bool) string {
	indent := strings.Repeat("│ ", c.Level)

	if c.IsCommitLink {
		line := indent + marker(c) + " " + linkStyle.Render("↦ "+c.ShortID)
		if selected {
			return selectedStyle.Render(line)
		}
		return line
	}

	parts := []string{
		indent + marker(c),
		idStyle.Render(c.ShortID),
	}
	if h.dateWidth > 0 {
		parts = append(parts, dateStyle.Render(layout.Adjust(c.AuthorRelDate, h.dateWidth)))
	}
	parts = append(parts, nameStyle.Render(layout.Adjust(c.AuthorName, h.nameWidth)))
	if len(h.cfg.Subtrees) > 0 {
		parts = append(parts, moduleStyle.Render(layout.Adjust(strings.Join(c.SubtreeModules, ", "), h.cfg.ModulesWidth)))
	}
	parts = append(parts, c.Icon)

	subject := c.Subject
	if c.ShortSubject != "" {
		subject = c.ShortSubject
		parts = append(parts, moduleStyle.Render(c.SubjectModule))
	}
	parts = append(parts, subject)

	if len(c.References) > 0 {
		refs := make([]string, len(c.References))
		for i, r := range c.References {
			refs[i] = string(r)
		}
		parts = append(parts, refStyle.Render("("+strings.Join(refs, ", ")+")"))
	}

	line := strings.Join(parts, " ")
	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

// Position reports the cursor row and the total line count for the footer.
func (h *HistoryView) Position() (int, int) {
	return h.cursor + 1, h.lineCount()
}
