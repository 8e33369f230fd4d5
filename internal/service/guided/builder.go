package guided

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	contractModels "studioflow/internal/domain/models/contract"
	guidedSvc "studioflow/internal/domain/services/guided"
	"studioflow/internal/service/contract"
)

const (
	addonsField       = "addons"
	addonClausesField = "addon_clauses"
	addonPrefix       = "add "
	historyLimit      = 200
)

// state is everything undo/redo restores
type state struct {
	values     contractModels.Variables
	transcript []guidedSvc.Message
	cursor     int
	awaiting   bool
	phase      guidedSvc.Phase
}

func (s state) clone() state {
	transcript := make([]guidedSvc.Message, len(s.transcript))
	copy(transcript, s.transcript)
	return state{
		values:     s.values.Clone(),
		transcript: transcript,
		cursor:     s.cursor,
		awaiting:   s.awaiting,
		phase:      s.phase,
	}
}

// Builder walks a catalog one question at a time. It is not safe for
// concurrent use; the session registry serializes access.
type Builder struct {
	catalog     *Catalog
	live        state
	history     *History[state]
	suggestions [3]string
}

// NewBuilder starts a conversation at the first applicable question
func NewBuilder(cat *Catalog) *Builder {
	b := &Builder{
		catalog: cat,
		live: state{
			values: contractModels.Variables{},
			phase:  guidedSvc.PhaseAsking,
		},
	}
	if cat.Intro != "" {
		b.say(cat.Intro)
	}
	b.advance()
	b.history = NewHistory(b.live, state.clone, historyLimit)
	return b
}

func (b *Builder) say(text string) {
	b.live.transcript = append(b.live.transcript, guidedSvc.Message{Role: guidedSvc.RoleAssistant, Text: text})
}

func (b *Builder) hear(text string) {
	b.live.transcript = append(b.live.transcript, guidedSvc.Message{Role: guidedSvc.RoleUser, Text: text})
}

// advance moves the cursor to the first applicable question at or after it,
// or into review when none is left
func (b *Builder) advance() {
	b.suggestions = [3]string{}
	for i := b.live.cursor; i < len(b.catalog.Questions); i++ {
		if b.catalog.Questions[i].Applies(b.live.values) {
			b.live.cursor = i
			b.live.awaiting = true
			b.say(b.catalog.Questions[i].Prompt)
			return
		}
	}

	b.live.cursor = len(b.catalog.Questions)
	b.live.awaiting = false
	b.live.phase = guidedSvc.PhaseReview
	b.say("Here's your risk check:\n" + strings.Join(b.catalog.RiskSummary(b.live.values), "\n"))
}

// Current returns the question awaiting an answer, if any
func (b *Builder) Current() *Question {
	if b.live.phase != guidedSvc.PhaseAsking || !b.live.awaiting || b.live.cursor >= len(b.catalog.Questions) {
		return nil
	}
	return &b.catalog.Questions[b.live.cursor]
}

// Phase reports asking or review
func (b *Builder) Phase() guidedSvc.Phase { return b.live.phase }

// Cursor is the index of the current question
func (b *Builder) Cursor() int { return b.live.cursor }

// Values returns a copy of the collected values
func (b *Builder) Values() contractModels.Variables { return b.live.values.Clone() }

// SetSuggestions offers candidate answers; a blank reply takes the first one
// when the question has no default
func (b *Builder) SetSuggestions(s [3]string) { b.suggestions = s }

// Submit handles one line of user input
func (b *Builder) Submit(input string) {
	input = strings.TrimSpace(input)

	if name, ok := addonCommand(input); ok {
		b.hear(input)
		b.applyAddon(name)
		return
	}

	q := b.Current()
	if q == nil {
		if input != "" {
			b.hear(input)
		}
		b.say("Everything is answered. Use \"add <name>\" for extras, undo to change an answer, or complete the build to create the draft.")
		return
	}

	answer := input
	if answer == "" {
		answer = q.Default
	}
	if answer == "" {
		answer = b.suggestions[0]
	}

	if answer == "" {
		if q.Required {
			b.say("This one needs an answer. " + q.Prompt)
			return
		}
		b.hear("(skipped)")
		b.live.cursor++
		b.advance()
		b.history.Push(b.live)
		return
	}

	value, err := Coerce(q, answer)
	if err != nil {
		b.hear(answer)
		var ae *answerError
		if errors.As(err, &ae) {
			b.say(ae.msg)
		} else {
			b.say(err.Error())
		}
		return
	}

	b.hear(answer)
	b.live.values[q.Field] = value
	b.live.cursor++
	b.advance()
	b.history.Push(b.live)
}

func (b *Builder) applyAddon(name string) {
	addon, ok := b.catalog.Addon(name)
	if !ok {
		b.say(fmt.Sprintf("I don't know an addon called %q. Available addons: %s.",
			name, strings.Join(b.catalog.AddonNames(), ", ")))
		return
	}
	if hasAddon(b.live.values, addon.Name) {
		b.say(addon.Name + " is already included.")
		return
	}

	addon.Apply(b.live.values)
	b.say("Added " + addon.Name + ".")
	b.history.Push(b.live)
}

// Undo restores the previous snapshot and re-asks its question
func (b *Builder) Undo() bool {
	s, ok := b.history.Undo()
	if !ok {
		return false
	}
	b.restore(s)
	return true
}

// Redo moves forward again after an undo
func (b *Builder) Redo() bool {
	s, ok := b.history.Redo()
	if !ok {
		return false
	}
	b.restore(s)
	return true
}

func (b *Builder) restore(s state) {
	b.live = s
	b.suggestions = [3]string{}
	if q := b.Current(); q != nil {
		b.say(q.Prompt)
	}
}

// View renders the builder for callers outside the package
func (b *Builder) View(id string) *guidedSvc.SessionView {
	transcript := make([]guidedSvc.Message, len(b.live.transcript))
	copy(transcript, b.live.transcript)

	view := &guidedSvc.SessionView{
		ID:            id,
		Phase:         b.live.phase,
		Cursor:        b.live.cursor,
		AwaitingInput: b.live.awaiting,
		Values:        b.live.values.Clone(),
		Transcript:    transcript,
		Addons:        b.catalog.AddonNames(),
		CanUndo:       b.history.CanUndo(),
		CanRedo:       b.history.CanRedo(),
	}
	if q := b.Current(); q != nil {
		view.Question = &guidedSvc.QuestionView{
			ID:      q.ID,
			Field:   q.Field,
			Prompt:  q.Prompt,
			Type:    q.Type,
			Options: q.Options,
			Default: q.Default,
		}
	}
	return view
}

// Draft is the contract content produced from the collected values
type Draft struct {
	Title       string
	Body        string
	ClientName  string
	ClientEmail string
	Variables   contractModels.Variables
}

// Draft assembles the contract text. providerName fills {{provider_name}}.
func (b *Builder) Draft(providerName string) Draft {
	tpl := b.catalog.Contract
	vars := b.live.values.Clone()
	vars["provider_name"] = providerName

	if tpl.TermsField != "" {
		var terms []string
		if clauses, ok := vars[addonClausesField].([]interface{}); ok {
			for _, c := range clauses {
				terms = append(terms, contract.Render(contract.Stringify(c), vars))
			}
		}
		vars[tpl.TermsField] = strings.Join(terms, "\n\n")
	}

	return Draft{
		Title:       strings.TrimSpace(contract.Render(tpl.Title, vars)),
		Body:        tpl.Body,
		ClientName:  contract.Stringify(vars[tpl.ClientName]),
		ClientEmail: contract.Stringify(vars[tpl.ClientMail]),
		Variables:   vars,
	}
}

// addonCommand recognises "add <name>"
func addonCommand(input string) (string, bool) {
	if len(input) <= len(addonPrefix) || !strings.EqualFold(input[:len(addonPrefix)], addonPrefix) {
		return "", false
	}
	name := strings.TrimSpace(input[len(addonPrefix):])
	return name, name != ""
}

func hasAddon(values contractModels.Variables, name string) bool {
	list, _ := values[addonsField].([]interface{})
	for _, item := range list {
		if s, ok := item.(string); ok && strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// Known summarizes the collected answers, one "field: value" line each
func (b *Builder) Known() string {
	values := b.live.values
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == addonClausesField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, contract.Stringify(values[k]))
	}
	return sb.String()
}
