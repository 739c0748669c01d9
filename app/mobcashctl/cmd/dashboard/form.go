package dashboard

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mobcash/backoffice/app/panichandler"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/client"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/form"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

// Focus order of the recharge dialog.
const (
	fieldAmount = iota
	fieldMethod
	fieldReference
	fieldNotes
	fieldProof
	fieldSubmit
	fieldCount
)

type attachDoneMsg struct {
	url string
	err error
}

type submitDoneMsg struct {
	err error
}

// rechargeDialog is the "new recharge" modal over the recharges tab.
type rechargeDialog struct {
	form   *form.RechargeForm
	inputs map[int]*textinput.Model
	method int
	focus  int

	uploading  bool
	submitting bool
	proofName  string
	message    string
	messageErr bool
}

func newRechargeDialog(f *form.RechargeForm) *rechargeDialog {
	mk := func(placeholder string, limit int) *textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		return &ti
	}
	d := &rechargeDialog{
		form: f,
		inputs: map[int]*textinput.Model{
			fieldAmount:    mk("200000", 20),
			fieldReference: mk("TX123", 64),
			fieldNotes:     mk("Optionnel", 256),
			fieldProof:     mk("/chemin/vers/recu.png puis Entrée", 512),
		},
		method: 1, // Mobile Money
	}
	d.inputs[fieldAmount].Focus()
	return d
}

func (d *rechargeDialog) fields() form.RechargeFields {
	return form.RechargeFields{
		Amount:           strings.TrimSpace(d.inputs[fieldAmount].Value()),
		PaymentMethod:    string(models.PaymentMethods()[d.method]),
		PaymentReference: strings.TrimSpace(d.inputs[fieldReference].Value()),
		Notes:            d.inputs[fieldNotes].Value(),
	}
}

func (d *rechargeDialog) setFocus(i int) tea.Cmd {
	if ti, ok := d.inputs[d.focus]; ok {
		ti.Blur()
	}
	d.focus = (i + fieldCount) % fieldCount
	if ti, ok := d.inputs[d.focus]; ok {
		return ti.Focus()
	}
	return nil
}

// update handles a key while the dialog is open. closed is true when the
// operator dismissed it.
func (d *rechargeDialog) update(ctx context.Context, msg tea.KeyMsg) (cmd tea.Cmd, closed bool) {
	switch msg.String() {
	case "esc":
		if d.submitting {
			return nil, false
		}
		d.form.Close()
		return nil, true
	case "tab", "down":
		return d.setFocus(d.focus + 1), false
	case "shift+tab", "up":
		return d.setFocus(d.focus - 1), false
	case "ctrl+s":
		return d.submit(ctx), false
	}

	switch d.focus {
	case fieldMethod:
		switch msg.String() {
		case "left", "h":
			d.method = (d.method + len(models.PaymentMethods()) - 1) % len(models.PaymentMethods())
		case "right", "l", " ":
			d.method = (d.method + 1) % len(models.PaymentMethods())
		case "enter":
			return d.setFocus(d.focus + 1), false
		}
		return nil, false
	case fieldProof:
		if msg.String() == "enter" {
			return d.attach(ctx), false
		}
	case fieldSubmit:
		if msg.String() == "enter" {
			return d.submit(ctx), false
		}
		return nil, false
	default:
		if msg.String() == "enter" {
			return d.setFocus(d.focus + 1), false
		}
	}

	ti := d.inputs[d.focus]
	updated, cmd := ti.Update(msg)
	*ti = updated
	return cmd, false
}

func (d *rechargeDialog) attach(ctx context.Context) tea.Cmd {
	path := strings.TrimSpace(d.inputs[fieldProof].Value())
	if path == "" || d.uploading {
		return nil
	}
	d.uploading = true
	d.setMessage("Téléchargement...", false)

	f := d.form
	return func() (msg tea.Msg) {
		defer panichandler.RecoverWithCallback("dashboard proof upload", func() {
			msg = attachDoneMsg{err: errInterrupted}
		})
		file, closer, err := resources.OpenFile(path)
		if err != nil {
			return attachDoneMsg{err: err}
		}
		defer func() {
			_ = closer.Close()
		}()
		url, err := f.AttachProof(ctx, file)
		return attachDoneMsg{url: url, err: err}
	}
}

func (d *rechargeDialog) submit(ctx context.Context) tea.Cmd {
	if d.submitting {
		return nil
	}
	if d.uploading {
		d.setMessage("Téléchargement en cours, veuillez patienter", true)
		return nil
	}
	d.form.SetFields(d.fields())
	d.submitting = true
	d.setMessage("Envoi...", false)

	f := d.form
	return func() (msg tea.Msg) {
		defer panichandler.RecoverWithCallback("dashboard recharge submit", func() {
			msg = submitDoneMsg{err: errInterrupted}
		})
		return submitDoneMsg{err: f.Submit(ctx)}
	}
}

// errInterrupted is reported when a dialog command panicked.
var errInterrupted = errors.New("opération interrompue par une erreur interne")

func (d *rechargeDialog) attachDone(msg attachDoneMsg) {
	d.uploading = false
	if msg.err != nil {
		d.proofName = ""
		d.setMessage(failureText(msg.err, resources.MsgProofUploadFailed), true)
		return
	}
	d.proofName = d.form.Proof.Info().Name
	d.setMessage(resources.MsgUploadSucceeded, false)
}

// submitDone reports whether the dialog should close.
func (d *rechargeDialog) submitDone(msg submitDoneMsg) bool {
	d.submitting = false
	if msg.err != nil {
		d.setMessage(failureText(msg.err, resources.MsgRechargeCreateFailed), true)
		return false
	}
	return true
}

func (d *rechargeDialog) setMessage(s string, isErr bool) {
	d.message, d.messageErr = s, isErr
}

func failureText(err error, fallback string) string {
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var rejected *resources.FileRejectedError
	if errors.As(err, &rejected) {
		return rejected.Message
	}
	if errors.Is(err, errInterrupted) {
		return "Erreur interne, veuillez réessayer"
	}
	if errors.Is(err, form.ErrSubmitInProgress) {
		return "Opération en cours, veuillez patienter"
	}
	return client.ErrorMessage(err, fallback)
}

func (d *rechargeDialog) view() string {
	label := func(i int, text string) string {
		if d.focus == i {
			return focusedLabelStyle.Render(text)
		}
		return labelStyle.Render(text)
	}

	var methods []string
	for i, m := range models.PaymentMethods() {
		if i == d.method {
			methods = append(methods, activeTabStyle.Render(m.Label()))
		} else {
			methods = append(methods, inactiveTabStyle.Render(m.Label()))
		}
	}

	proof := d.inputs[fieldProof].View()
	if d.proofName != "" {
		proof += "  " + successStyle.Render("✓ "+d.proofName)
	}

	button := buttonStyle.Render("Créer la recharge")
	if d.focus == fieldSubmit {
		button = focusedButtonStyle.Render("Créer la recharge")
	}

	lines := []string{
		titleStyle.Render(" Nouvelle recharge "),
		"",
		label(fieldAmount, "Montant *") + d.inputs[fieldAmount].View(),
		label(fieldMethod, "Méthode de paiement *") + strings.Join(methods, " "),
		label(fieldReference, "Référence *") + d.inputs[fieldReference].View(),
		label(fieldNotes, "Notes") + d.inputs[fieldNotes].View(),
		label(fieldProof, "Preuve de paiement") + proof,
		"",
		button,
	}
	if d.message != "" {
		style := mutedStyle
		if d.messageErr {
			style = errorStyle
		}
		lines = append(lines, "", style.Render(d.message))
	}
	lines = append(lines, "", keyDescStyle.Render("tab champ suivant · ←/→ méthode · ctrl+s envoyer · esc fermer"))

	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
