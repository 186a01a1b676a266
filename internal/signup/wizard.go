// Package signup drives the four step registration flow: account details,
// email verification, mobile verification and password.
package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/amishk599/jobdesk/internal/api"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/ratelimit"
	"github.com/amishk599/jobdesk/internal/view"
)

type Step int

const (
	StepUserInfo Step = iota
	StepEmailOTP
	StepMobileOTP
	StepPassword
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepUserInfo:
		return "Your details"
	case StepEmailOTP:
		return "Verify email"
	case StepMobileOTP:
		return "Verify mobile"
	case StepPassword:
		return "Set password"
	case StepDone:
		return "Done"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// MobilePhase is the sub-state of the mobile verification step.
type MobilePhase int

const (
	PhoneEntry MobilePhase = iota
	OTPEntry
	Verified
)

type EmailStatus int

const (
	EmailUnchecked EmailStatus = iota
	EmailAvailable
	EmailTaken
)

// Resend cooldown keys.
const (
	channelEmail  = "otp:email"
	channelMobile = "otp:mobile"
)

const minPasswordLen = 8

// AuthAPI is the part of the auth service the wizard calls.
type AuthAPI interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
	SignUp(ctx context.Context, req api.SignUpRequest) (model.User, error)
	SendEmailOTP(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, email, otp string) error
	SendMobileOTP(ctx context.Context, email, mobile string) error
	VerifyMobile(ctx context.Context, email, mobile, otp string) error
	SetPassword(ctx context.Context, email, password string) (model.AuthResult, error)
}

// SessionWriter stores the signed-in user once the password is set.
type SessionWriter interface {
	Login(ctx context.Context, tokens model.Tokens, user model.User) error
}

// UserInfo is the first step's input.
type UserInfo struct {
	FirstName  string
	LastName   string
	Email      string
	Role       model.Role
	Experience model.ExperienceType
}

// Wizard holds the signup state. Every action either advances the state or
// leaves it unchanged and sets Error.
type Wizard struct {
	auth     AuthAPI
	session  SessionWriter
	cooldown *ratelimit.Limiter
	validate *validator.Validate
	logger   *slog.Logger

	mu           sync.Mutex
	step         Step
	info         UserInfo
	emailStatus  EmailStatus
	checkedEmail string
	// registeredAs is the normalized email the account was created with.
	registeredAs string
	phase        MobilePhase
	mobile       string
	user         model.User
	err          string
}

// New creates a wizard at the first step. cooldown enforces the minimum gap
// between OTP sends on each channel.
func New(auth AuthAPI, session SessionWriter, cooldown *ratelimit.Limiter, logger *slog.Logger) *Wizard {
	return &Wizard{
		auth:     auth,
		session:  session,
		cooldown: cooldown,
		validate: validator.New(),
		logger:   logger,
	}
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) Phase() MobilePhase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

func (w *Wizard) Info() UserInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.info
}

// Error is the message of the last failed action, cleared by the next
// successful one.
func (w *Wizard) Error() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Wizard) EmailStatus() EmailStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.checkedEmail != normalizeEmail(w.info.Email) {
		return EmailUnchecked
	}
	return w.emailStatus
}

// User is the registered account, set once signup has been submitted.
func (w *Wizard) User() model.User {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.user
}

// Mobile is the number the OTP was sent to.
func (w *Wizard) Mobile() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mobile
}

// ResendEmailIn and ResendMobileIn report the remaining cooldown.
func (w *Wizard) ResendEmailIn() time.Duration  { return w.cooldown.Remaining(channelEmail) }
func (w *Wizard) ResendMobileIn() time.Duration { return w.cooldown.Remaining(channelMobile) }

// SetUserInfo updates the first step's fields. Changing the email discards
// the previous availability check.
func (w *Wizard) SetUserInfo(info UserInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	info.FirstName = strings.TrimSpace(info.FirstName)
	info.LastName = strings.TrimSpace(info.LastName)
	info.Email = strings.TrimSpace(info.Email)
	w.info = info
	if w.registeredAs != "" && w.registeredAs != normalizeEmail(info.Email) {
		w.registeredAs = ""
		w.user = model.User{}
	}
}

// CheckEmail asks the server whether the current email is free.
func (w *Wizard) CheckEmail(ctx context.Context) error {
	w.mu.Lock()
	email := normalizeEmail(w.info.Email)
	w.mu.Unlock()

	if !w.validEmail(email) {
		return w.fail(fmt.Errorf("%w: Enter a valid email address", model.ErrValidation), "")
	}

	available, err := w.auth.CheckEmail(ctx, email)
	if err != nil {
		return w.fail(fmt.Errorf("check email: %w", err), "Could not check this email. Please try again.")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.checkedEmail = email
	if !available {
		w.emailStatus = EmailTaken
		w.err = "An account with this email already exists. Try logging in instead."
		return fmt.Errorf("%w: email %s is taken", model.ErrValidation, email)
	}
	w.emailStatus = EmailAvailable
	w.err = ""
	return nil
}

// CanContinue reports whether the Continue action is enabled on the current
// step. Only the details and mobile steps have one; the others advance
// through their own actions.
func (w *Wizard) CanContinue() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.step {
	case StepUserInfo:
		return w.userInfoReadyLocked()
	case StepMobileOTP:
		return w.phase == Verified
	}
	return false
}

func (w *Wizard) userInfoReadyLocked() bool {
	i := w.info
	if i.FirstName == "" || i.LastName == "" || i.Email == "" {
		return false
	}
	if i.Role != model.RoleJobSeeker && i.Role != model.RoleEmployer {
		return false
	}
	if !i.Experience.Valid() {
		return false
	}
	email := normalizeEmail(i.Email)
	return w.validEmail(email) && w.checkedEmail == email && w.emailStatus == EmailAvailable
}

// Continue advances from the details step (registering the account and
// sending the email code) or from a verified mobile step.
func (w *Wizard) Continue(ctx context.Context) error {
	if !w.CanContinue() {
		return w.fail(fmt.Errorf("%w: step %s is incomplete", model.ErrValidation, w.Step()), w.incompleteMessage())
	}

	switch w.Step() {
	case StepUserInfo:
		return w.register(ctx)
	case StepMobileOTP:
		w.advance(StepPassword)
		return nil
	}
	return nil
}

func (w *Wizard) incompleteMessage() string {
	switch w.Step() {
	case StepUserInfo:
		if w.EmailStatus() == EmailTaken {
			return "An account with this email already exists. Try logging in instead."
		}
		return "Fill in every field, verify your email is available and choose your role and experience."
	case StepMobileOTP:
		return "Verify your mobile number to continue."
	}
	return "This step cannot be continued."
}

func (w *Wizard) register(ctx context.Context) error {
	w.mu.Lock()
	info := w.info
	registeredAs := w.registeredAs
	w.mu.Unlock()
	email := normalizeEmail(info.Email)

	if registeredAs != email {
		user, err := w.auth.SignUp(ctx, api.SignUpRequest{
			FirstName:      info.FirstName,
			LastName:       info.LastName,
			Email:          email,
			Role:           info.Role,
			ExperienceType: info.Experience,
		})
		if err != nil {
			return w.fail(fmt.Errorf("sign up: %w", err), "Failed to create your account. Please try again.")
		}
		w.mu.Lock()
		w.registeredAs = email
		w.user = user
		w.mu.Unlock()
		w.logger.Info("account registered", "email", email, "role", info.Role)
	}

	if err := w.sendEmail(ctx, email); err != nil {
		return err
	}
	w.advance(StepEmailOTP)
	return nil
}

// VerifyEmail submits the emailed code and advances to mobile verification.
func (w *Wizard) VerifyEmail(ctx context.Context, code string) error {
	if w.Step() != StepEmailOTP {
		return w.wrongStep(StepEmailOTP)
	}
	code, err := w.checkCode(code)
	if err != nil {
		return err
	}
	email := normalizeEmail(w.Info().Email)
	if err := w.auth.VerifyEmail(ctx, email, code); err != nil {
		return w.fail(fmt.Errorf("verify email: %w", err), "Invalid or expired code. Please try again.")
	}
	w.logger.Info("email verified", "email", email)
	w.advance(StepMobileOTP)
	return nil
}

// ResendEmail sends a new email code unless the cooldown is running.
func (w *Wizard) ResendEmail(ctx context.Context) error {
	if w.Step() != StepEmailOTP {
		return w.wrongStep(StepEmailOTP)
	}
	if err := w.sendEmail(ctx, normalizeEmail(w.Info().Email)); err != nil {
		return err
	}
	w.clearError()
	return nil
}

func (w *Wizard) sendEmail(ctx context.Context, email string) error {
	if ok, wait := w.cooldown.Allow(channelEmail); !ok {
		return w.fail(fmt.Errorf("%w: resend available in %s", model.ErrValidation, wait), waitMessage(wait))
	}
	if err := w.auth.SendEmailOTP(ctx, email); err != nil {
		w.cooldown.Reset(channelEmail)
		return w.fail(fmt.Errorf("send email otp: %w", err), "Failed to send verification code. Please try again.")
	}
	return nil
}

// SendMobileOTP sends a code to phone. The phase moves to OTP entry only if
// the send succeeds.
func (w *Wizard) SendMobileOTP(ctx context.Context, phone string) error {
	if w.Step() != StepMobileOTP {
		return w.wrongStep(StepMobileOTP)
	}
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if err := w.validate.Var(phone, "required,e164"); err != nil {
		return w.fail(fmt.Errorf("%w: invalid mobile number", model.ErrValidation),
			"Enter the mobile number in international format, e.g. +14155550123")
	}
	if w.Phase() == Verified {
		return w.fail(fmt.Errorf("%w: mobile already verified", model.ErrValidation), "Your mobile number is already verified.")
	}
	if ok, wait := w.cooldown.Allow(channelMobile); !ok {
		return w.fail(fmt.Errorf("%w: resend available in %s", model.ErrValidation, wait), waitMessage(wait))
	}

	email := normalizeEmail(w.Info().Email)
	if err := w.auth.SendMobileOTP(ctx, email, phone); err != nil {
		w.cooldown.Reset(channelMobile)
		return w.fail(fmt.Errorf("send mobile otp: %w", err), "Failed to send verification code. Please try again.")
	}

	w.mu.Lock()
	w.mobile = phone
	w.phase = OTPEntry
	w.err = ""
	w.mu.Unlock()
	return nil
}

// ResendMobile sends another code to the number already entered.
func (w *Wizard) ResendMobile(ctx context.Context) error {
	if w.Phase() != OTPEntry {
		return w.fail(fmt.Errorf("%w: no code has been sent", model.ErrValidation), "Enter your mobile number first.")
	}
	return w.SendMobileOTP(ctx, w.Mobile())
}

// ChangeNumber returns to phone entry.
func (w *Wizard) ChangeNumber() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepMobileOTP && w.phase == OTPEntry {
		w.phase = PhoneEntry
		w.err = ""
	}
}

// VerifyMobile submits the SMS code. Success marks the phase Verified and
// enables Continue.
func (w *Wizard) VerifyMobile(ctx context.Context, code string) error {
	if w.Step() != StepMobileOTP {
		return w.wrongStep(StepMobileOTP)
	}
	if w.Phase() != OTPEntry {
		return w.fail(fmt.Errorf("%w: no code has been sent", model.ErrValidation), "Enter your mobile number first.")
	}
	code, err := w.checkCode(code)
	if err != nil {
		return err
	}
	email, mobile := normalizeEmail(w.Info().Email), w.Mobile()
	if err := w.auth.VerifyMobile(ctx, email, mobile, code); err != nil {
		return w.fail(fmt.Errorf("verify mobile: %w", err), "Invalid or expired code. Please try again.")
	}

	w.mu.Lock()
	w.phase = Verified
	w.user.Mobile = mobile
	w.user.MobileVerified = true
	w.err = ""
	w.mu.Unlock()
	w.logger.Info("mobile verified", "email", email)
	return nil
}

// SetPassword completes signup and signs the user in.
func (w *Wizard) SetPassword(ctx context.Context, password, confirm string) error {
	if w.Step() != StepPassword {
		return w.wrongStep(StepPassword)
	}
	if msg := CheckPassword(password); msg != "" {
		return w.fail(fmt.Errorf("%w: %s", model.ErrValidation, msg), msg)
	}
	if password != confirm {
		return w.fail(fmt.Errorf("%w: passwords do not match", model.ErrValidation), "Passwords do not match.")
	}

	email := normalizeEmail(w.Info().Email)
	res, err := w.auth.SetPassword(ctx, email, password)
	if err != nil {
		return w.fail(fmt.Errorf("set password: %w", err), "Failed to set your password. Please try again.")
	}
	if err := w.session.Login(ctx, res.Tokens, res.User); err != nil {
		return w.fail(fmt.Errorf("store session: %w", err), "Your account is ready but we could not sign you in. Please log in.")
	}

	w.mu.Lock()
	w.user = res.User
	w.mu.Unlock()
	w.logger.Info("signup complete", "email", email, "user_id", res.User.ID)
	w.advance(StepDone)
	return nil
}

// CheckPassword returns a message describing why password is too weak, or "".
func CheckPassword(password string) string {
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if len([]rune(password)) < minPasswordLen || !letter || !digit {
		return fmt.Sprintf("Password must be at least %d characters and contain a letter and a digit.", minPasswordLen)
	}
	return ""
}

func (w *Wizard) checkCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if err := w.validate.Var(code, "required,len=6,number"); err != nil {
		return "", w.fail(fmt.Errorf("%w: malformed code", model.ErrValidation), "Enter the 6-digit code.")
	}
	return code, nil
}

func (w *Wizard) validEmail(email string) bool {
	return w.validate.Var(email, "required,email") == nil
}

func (w *Wizard) advance(to Step) {
	w.mu.Lock()
	from := w.step
	w.step = to
	w.err = ""
	w.mu.Unlock()
	w.logger.Debug("signup step", "from", from, "to", to)
}

func (w *Wizard) wrongStep(want Step) error {
	return w.fail(fmt.Errorf("%w: not on step %s", model.ErrValidation, want), "")
}

// fail records a user-facing message and returns err. Server messages win
// over fallback; validation failures use fallback, or the error text when
// fallback is empty.
func (w *Wizard) fail(err error, fallback string) error {
	msg := fallback
	switch {
	case errors.Is(err, model.ErrValidation):
		if msg == "" {
			msg = view.UserMessage(err, "")
		}
	default:
		msg = view.UserMessage(err, fallback)
	}
	w.mu.Lock()
	w.err = msg
	w.mu.Unlock()
	w.logger.Debug("signup action failed", "error", err)
	return err
}

func (w *Wizard) clearError() {
	w.mu.Lock()
	w.err = ""
	w.mu.Unlock()
}

func waitMessage(wait time.Duration) string {
	secs := int(wait.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("Please wait %ds before requesting a new code.", secs)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
