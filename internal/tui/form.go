package tui

import (
	"slices"
	"strings"

	"github.com/alkime/monshin/internal/intake"
	"github.com/alkime/monshin/internal/tui/style"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formField int

const (
	fieldVisitType formField = iota
	fieldLastName
	fieldFirstName
	fieldGender
	fieldCount
)

// patientForm is the step-1 form. It holds only widget state; the values
// live in intake.State and are pushed there on every change.
type patientForm struct {
	focus  formField
	visit  int
	gender int
	last   textinput.Model
	first  textinput.Model
}

func newPatientForm() patientForm {
	newInput := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Prompt = ""
		ti.CharLimit = 32

		return ti
	}

	return patientForm{
		visit:  -1,
		gender: -1,
		last:   newInput("山田"),
		first:  newInput("太郎"),
	}
}

// update routes one key press. It returns the patient events to dispatch.
func (f patientForm) update(msg tea.KeyMsg, keys KeyMap) (patientForm, []intake.Event, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.NextField):
		return f.focusOn((f.focus + 1) % fieldCount)
	case key.Matches(msg, keys.PrevField):
		return f.focusOn((f.focus + fieldCount - 1) % fieldCount)
	}

	switch f.focus {
	case fieldVisitType:
		if !key.Matches(msg, keys.Choose) {
			return f, nil, nil
		}

		f.visit = cycle(f.visit, len(intake.VisitTypes), msg.String() == "left")

		return f, []intake.Event{intake.SetPatientField{
			Field: intake.FieldVisitType,
			Value: string(intake.VisitTypes[f.visit]),
		}}, nil

	case fieldGender:
		if !key.Matches(msg, keys.Choose) {
			return f, nil, nil
		}

		f.gender = cycle(f.gender, len(intake.Genders), msg.String() == "left")

		return f, []intake.Event{intake.SetPatientField{
			Field: intake.FieldGender,
			Value: string(intake.Genders[f.gender]),
		}}, nil

	case fieldLastName:
		return f.updateInput(&f.last, intake.FieldLastName, msg)

	case fieldFirstName:
		return f.updateInput(&f.first, intake.FieldFirstName, msg)
	}

	return f, nil, nil
}

func (f patientForm) updateInput(ti *textinput.Model, field intake.PatientField, msg tea.KeyMsg) (patientForm, []intake.Event, tea.Cmd) {
	before := ti.Value()

	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)

	if ti.Value() == before {
		return f, nil, cmd
	}

	return f, []intake.Event{intake.SetPatientField{Field: field, Value: ti.Value()}}, cmd
}

func (f patientForm) focusOn(field formField) (patientForm, []intake.Event, tea.Cmd) {
	f.focus = field
	f.last.Blur()
	f.first.Blur()

	var cmd tea.Cmd

	switch field {
	case fieldLastName:
		cmd = f.last.Focus()
	case fieldFirstName:
		cmd = f.first.Focus()
	default:
	}

	return f, nil, cmd
}

// sync clears the widgets once the session state has been reset.
func (f patientForm) sync(p intake.PatientInfo) patientForm {
	if p != (intake.PatientInfo{}) {
		return f
	}

	fresh := newPatientForm()
	fresh.focus = f.focus

	switch f.focus {
	case fieldLastName:
		fresh.last.Focus()
	case fieldFirstName:
		fresh.first.Focus()
	default:
	}

	return fresh
}

func (f patientForm) view() string {
	var sb strings.Builder

	row := func(field formField, label, value string) {
		marker := "  "
		rendered := style.Label.Render(label)

		if f.focus == field {
			marker = style.Focused.Render("> ")
			rendered = style.Focused.Render(label)
		}

		sb.WriteString(marker + rendered + "  " + value + "\n")
	}

	visitLabels := make([]string, len(intake.VisitTypes))
	for i, v := range intake.VisitTypes {
		visitLabels[i] = v.Label()
	}

	genderLabels := make([]string, len(intake.Genders))
	for i, g := range intake.Genders {
		genderLabels[i] = g.Label()
	}

	row(fieldVisitType, "受診区分", choice(visitLabels, f.visit))
	row(fieldLastName, "姓　　　", f.last.View())
	row(fieldFirstName, "名　　　", f.first.View())
	row(fieldGender, "性別　　", choice(genderLabels, f.gender))

	return sb.String()
}

func choice(labels []string, selected int) string {
	if selected < 0 || selected >= len(labels) {
		return style.Muted.Render("◀ 選択してください ▶")
	}

	parts := slices.Clone(labels)
	for i := range parts {
		if i == selected {
			parts[i] = style.Focused.Render("(" + parts[i] + ")")
		} else {
			parts[i] = style.Muted.Render(parts[i])
		}
	}

	return strings.Join(parts, " ")
}

// cycle moves an option index, starting from the first option when unset.
func cycle(current, n int, backward bool) int {
	switch {
	case current < 0:
		return 0
	case backward:
		return (current + n - 1) % n
	default:
		return (current + 1) % n
	}
}
