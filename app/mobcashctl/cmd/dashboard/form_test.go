package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/form"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

type panickingCreator struct{}

func (panickingCreator) Create(context.Context, models.CreateRechargeInput) (*models.Recharge, error) {
	panic("create exploded")
}

type panickingUploader struct{}

func (panickingUploader) Upload(context.Context, resources.File, resources.UploadKind) (string, error) {
	panic("upload exploded")
}

func TestRechargeDialog_SubmitPanicUnblocks(t *testing.T) {
	d := newRechargeDialog(form.NewRechargeForm(panickingCreator{}, panickingUploader{}, nil))
	d.inputs[fieldAmount].SetValue("200000")
	d.inputs[fieldReference].SetValue("TX123")

	cmd := d.submit(context.Background())
	require.NotNil(t, cmd)
	assert.True(t, d.submitting)

	done, ok := cmd().(submitDoneMsg)
	require.True(t, ok)
	assert.ErrorIs(t, done.err, errInterrupted)

	assert.False(t, d.submitDone(done))
	assert.False(t, d.submitting)
	assert.True(t, d.messageErr)
	assert.False(t, d.form.Busy())
	assert.NotNil(t, d.submit(context.Background()), "the dialog accepts another attempt")
}

func TestRechargeDialog_AttachPanicUnblocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recu.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	d := newRechargeDialog(form.NewRechargeForm(panickingCreator{}, panickingUploader{}, nil))
	d.inputs[fieldProof].SetValue(path)

	cmd := d.attach(context.Background())
	require.NotNil(t, cmd)
	assert.True(t, d.uploading)

	done, ok := cmd().(attachDoneMsg)
	require.True(t, ok)
	assert.ErrorIs(t, done.err, errInterrupted)

	d.attachDone(done)
	assert.False(t, d.uploading)
	assert.Empty(t, d.proofName)
	assert.False(t, d.form.Proof.Uploading())
}
