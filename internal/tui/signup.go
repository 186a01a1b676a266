package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/signup"
)

const (
	inFirst = iota
	inLast
	inEmail
	inCode
	inPhone
	inPassword
	inConfirm
	numInputs
)

// Choice rows follow the text inputs.
const (
	rowRole = numInputs + iota
	rowExperience
)

var (
	roleChoices       = []model.Role{model.RoleJobSeeker, model.RoleEmployer}
	experienceChoices = []model.ExperienceType{model.ExperienceFresher, model.ExperienceExperienced}
)

type wizardDoneMsg struct{ err error }

type signupModel struct {
	ctx    context.Context
	wiz    *signup.Wizard
	inputs [numInputs]textinput.Model
	role   int // index into roleChoices, -1 when unset
	exp    int
	focus  int // index into rows()
	busy   bool
	// startedAt is the step and phase when the pending call began.
	startedAt [2]int
}

func newSignupModel(ctx context.Context, wiz *signup.Wizard) signupModel {
	m := signupModel{ctx: ctx, wiz: wiz, role: -1, exp: -1}
	placeholders := [numInputs]string{
		inFirst:    "Ada",
		inLast:     "Lovelace",
		inEmail:    "you@example.com",
		inCode:     "6-digit code",
		inPhone:    "+14155550123",
		inPassword: "at least 8 characters",
		inConfirm:  "repeat password",
	}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Width = 36
		switch i {
		case inCode:
			in.CharLimit = 6
		case inPassword, inConfirm:
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		m.inputs[i] = in
	}
	m.inputs[inFirst].Focus()
	return m
}

func (m signupModel) position() [2]int {
	return [2]int{int(m.wiz.Step()), int(m.wiz.Phase())}
}

// rows lists the focusable rows of the current step.
func (m signupModel) rows() []int {
	switch m.wiz.Step() {
	case signup.StepUserInfo:
		return []int{inFirst, inLast, inEmail, rowRole, rowExperience}
	case signup.StepEmailOTP:
		return []int{inCode}
	case signup.StepMobileOTP:
		switch m.wiz.Phase() {
		case signup.PhoneEntry:
			return []int{inPhone}
		case signup.OTPEntry:
			return []int{inCode}
		}
		return nil
	case signup.StepPassword:
		return []int{inPassword, inConfirm}
	}
	return nil
}

func (m signupModel) current() int {
	rows := m.rows()
	if len(rows) == 0 {
		return -1
	}
	return rows[clamp(m.focus, 0, len(rows)-1)]
}

func (m *signupModel) setFocus(i int) tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	rows := m.rows()
	if len(rows) == 0 {
		m.focus = 0
		return nil
	}
	m.focus = (i + len(rows)) % len(rows)
	if cur := m.current(); cur < numInputs {
		return m.inputs[cur].Focus()
	}
	return nil
}

func (m signupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m signupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case wizardDoneMsg:
		m.busy = false
		if m.position() == m.startedAt {
			return m, m.setFocus(m.focus)
		}
		m.inputs[inCode].SetValue("")
		return m, m.setFocus(0)

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" || key == "esc" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		if m.wiz.Step() == signup.StepDone {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	if cur := m.current(); cur >= 0 && cur < numInputs {
		var cmd tea.Cmd
		m.inputs[cur], cmd = m.inputs[cur].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m signupModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur := m.current()
	rows := m.rows()

	switch msg.String() {
	case "tab", "down":
		cmd := m.setFocus(m.focus + 1)
		return m.leave(cur, cmd)
	case "shift+tab", "up":
		cmd := m.setFocus(m.focus - 1)
		return m.leave(cur, cmd)
	case "left", "right", " ":
		if cur == rowRole || cur == rowExperience {
			m.toggle(cur, msg.String() == "left")
			m.syncInfo()
			return m, nil
		}
	case "ctrl+r":
		return m.run(m.resend())
	case "ctrl+e":
		if m.wiz.Step() == signup.StepMobileOTP && m.wiz.Phase() == signup.OTPEntry {
			m.wiz.ChangeNumber()
			return m, m.setFocus(0)
		}
	case "enter":
		if m.focus < len(rows)-1 {
			cmd := m.setFocus(m.focus + 1)
			return m.leave(cur, cmd)
		}
		return m.run(m.submit())
	}

	if cur >= 0 && cur < numInputs {
		var cmd tea.Cmd
		m.inputs[cur], cmd = m.inputs[cur].Update(msg)
		m.syncInfo()
		return m, cmd
	}
	return m, nil
}

// leave checks the email as soon as the cursor leaves the email field.
func (m signupModel) leave(row int, focusCmd tea.Cmd) (tea.Model, tea.Cmd) {
	if row != inEmail || strings.TrimSpace(m.inputs[inEmail].Value()) == "" ||
		m.wiz.EmailStatus() != signup.EmailUnchecked {
		return m, focusCmd
	}
	wiz, ctx := m.wiz, m.ctx
	m.busy = true
	m.startedAt = m.position()
	return m, tea.Batch(focusCmd, func() tea.Msg {
		return wizardDoneMsg{err: wiz.CheckEmail(ctx)}
	})
}

func (m *signupModel) toggle(row int, back bool) {
	step := 1
	if back {
		step = -1
	}
	if row == rowRole {
		m.role = (max(m.role, 0) + step + len(roleChoices)) % len(roleChoices)
		return
	}
	m.exp = (max(m.exp, 0) + step + len(experienceChoices)) % len(experienceChoices)
}

func (m signupModel) syncInfo() {
	if m.wiz.Step() != signup.StepUserInfo {
		return
	}
	info := signup.UserInfo{
		FirstName: m.inputs[inFirst].Value(),
		LastName:  m.inputs[inLast].Value(),
		Email:     m.inputs[inEmail].Value(),
	}
	if m.role >= 0 {
		info.Role = roleChoices[m.role]
	}
	if m.exp >= 0 {
		info.Experience = experienceChoices[m.exp]
	}
	m.wiz.SetUserInfo(info)
}

func (m signupModel) submit() func(context.Context) error {
	wiz := m.wiz
	switch wiz.Step() {
	case signup.StepUserInfo:
		return wiz.Continue
	case signup.StepEmailOTP:
		code := m.inputs[inCode].Value()
		return func(ctx context.Context) error { return wiz.VerifyEmail(ctx, code) }
	case signup.StepMobileOTP:
		switch wiz.Phase() {
		case signup.PhoneEntry:
			phone := m.inputs[inPhone].Value()
			return func(ctx context.Context) error { return wiz.SendMobileOTP(ctx, phone) }
		case signup.OTPEntry:
			code := m.inputs[inCode].Value()
			return func(ctx context.Context) error { return wiz.VerifyMobile(ctx, code) }
		}
		return wiz.Continue
	case signup.StepPassword:
		pw, confirm := m.inputs[inPassword].Value(), m.inputs[inConfirm].Value()
		return func(ctx context.Context) error { return wiz.SetPassword(ctx, pw, confirm) }
	}
	return nil
}

func (m signupModel) resend() func(context.Context) error {
	switch {
	case m.wiz.Step() == signup.StepEmailOTP:
		return m.wiz.ResendEmail
	case m.wiz.Step() == signup.StepMobileOTP && m.wiz.Phase() == signup.OTPEntry:
		return m.wiz.ResendMobile
	}
	return nil
}

func (m signupModel) run(fn func(context.Context) error) (tea.Model, tea.Cmd) {
	if fn == nil {
		return m, nil
	}
	m.busy = true
	m.startedAt = m.position()
	ctx := m.ctx
	return m, func() tea.Msg {
		return wizardDoneMsg{err: fn(ctx)}
	}
}

func (m signupModel) View() string {
	step := m.wiz.Step()
	var b strings.Builder

	if step == signup.StepDone {
		b.WriteString(titleStyle.Render("Welcome to jobdesk, "+m.wiz.User().FirstName+"!") + "\n")
		b.WriteString("  Your account is ready and you are signed in.\n\n")
		b.WriteString(hintStyle.Render("  press any key to exit") + "\n")
		return b.String()
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("Create your account · Step %d of 4: %s", int(step)+1, step)) + "\n")

	cur := m.current()
	label := func(row int, text string) string {
		if row == cur {
			return "  " + focusedLabelStyle.Render(text) + " "
		}
		return "  " + labelStyle.Render(text) + " "
	}
	input := func(row int, text string) {
		b.WriteString(label(row, text) + m.inputs[row].View() + "\n")
	}

	switch step {
	case signup.StepUserInfo:
		input(inFirst, "First name")
		input(inLast, "Last name")
		b.WriteString(label(inEmail, "Email") + m.inputs[inEmail].View() + emailBadge(m.wiz.EmailStatus()) + "\n")
		b.WriteString(label(rowRole, "I am a") + choices(roleLabels(), m.role) + "\n")
		b.WriteString(label(rowExperience, "Experience") + choices([]string{"Fresher", "Experienced"}, m.exp) + "\n")

	case signup.StepEmailOTP:
		fmt.Fprintf(&b, "  We sent a code to %s.\n\n", m.wiz.Info().Email)
		input(inCode, "Code")
		b.WriteString("\n  " + resendHint(m.wiz.ResendEmailIn()) + "\n")

	case signup.StepMobileOTP:
		switch m.wiz.Phase() {
		case signup.PhoneEntry:
			input(inPhone, "Mobile")
		case signup.OTPEntry:
			fmt.Fprintf(&b, "  We sent a code to %s.\n\n", m.wiz.Mobile())
			input(inCode, "Code")
			b.WriteString("\n  " + resendHint(m.wiz.ResendMobileIn()) + "  " + hintStyle.Render("ctrl+e change number") + "\n")
		case signup.Verified:
			b.WriteString("  " + noticeStyle.Render("✓ "+m.wiz.Mobile()+" verified") + "\n")
		}

	case signup.StepPassword:
		input(inPassword, "Password")
		input(inConfirm, "Confirm")
	}

	b.WriteByte('\n')
	if m.busy {
		b.WriteString("  Please wait...\n")
	} else if msg := m.wiz.Error(); msg != "" {
		b.WriteString("  " + errorStyle.Render(msg) + "\n")
	}

	hint := "  tab next field  enter submit  esc cancel"
	if step == signup.StepUserInfo {
		hint = "  tab next field  ←/→ choose  enter continue  esc cancel"
		if m.wiz.CanContinue() {
			hint += "  " + noticeStyle.Render("ready")
		}
	}
	b.WriteString(hintStyle.Render(hint) + "\n")
	return b.String()
}

func emailBadge(s signup.EmailStatus) string {
	switch s {
	case signup.EmailAvailable:
		return " " + noticeStyle.Render("✓ available")
	case signup.EmailTaken:
		return " " + errorStyle.Render("✗ taken")
	}
	return ""
}

func roleLabels() []string {
	out := make([]string, len(roleChoices))
	for i, r := range roleChoices {
		out[i] = r.Label()
	}
	return out
}

func choices(options []string, selected int) string {
	parts := make([]string, len(options))
	for i, o := range options {
		if i == selected {
			parts[i] = chosenStyle.Render(o)
		} else {
			parts[i] = choiceStyle.Render(o)
		}
	}
	return strings.Join(parts, " ")
}

func resendHint(wait time.Duration) string {
	if wait > 0 {
		return hintStyle.Render(fmt.Sprintf("resend available in %ds", int(wait.Round(time.Second).Seconds())))
	}
	return hintStyle.Render("ctrl+r resend code")
}

// RunSignup walks the user through the wizard. It reports whether the
// account was created and signed in.
func RunSignup(ctx context.Context, wiz *signup.Wizard) (bool, error) {
	p := tea.NewProgram(newSignupModel(ctx, wiz), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return false, fmt.Errorf("run signup screen: %w", err)
	}
	return wiz.Step() == signup.StepDone, nil
}
