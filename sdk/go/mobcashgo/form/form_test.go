package form

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/client"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/notify"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/ptr"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/querycache"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

type fakeCreator struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
	got     models.CreateRechargeInput
}

func (f *fakeCreator) Create(ctx context.Context, in models.CreateRechargeInput) (*models.Recharge, error) {
	f.calls.Add(1)
	f.got = in
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.Recharge{ID: 1}, nil
}

type fakeUploader struct {
	url string
	err error
}

func (f fakeUploader) Upload(ctx context.Context, file resources.File, kind resources.UploadKind) (string, error) {
	return f.url, f.err
}

type fakePlatformWriter struct {
	created []models.PlatformInput
	updated map[string]models.PlatformPatch
}

func (f *fakePlatformWriter) Create(ctx context.Context, in models.PlatformInput) (*models.Platform, error) {
	f.created = append(f.created, in)
	return &models.Platform{ID: "new"}, nil
}

func (f *fakePlatformWriter) Update(ctx context.Context, id string, patch models.PlatformPatch) (*models.Platform, error) {
	if f.updated == nil {
		f.updated = map[string]models.PlatformPatch{}
	}
	f.updated[id] = patch
	return &models.Platform{ID: id}, nil
}

func validRecharge() RechargeFields {
	return RechargeFields{
		Amount:           "200000",
		PaymentMethod:    "MOBILE_MONEY",
		PaymentReference: "TX123",
	}
}

func TestMachine_Transitions(t *testing.T) {
	var m Machine
	assert.Equal(t, StateIdle, m.State())

	var seen []State
	m.OnChange(func(s State) { seen = append(seen, s) })

	require.NoError(t, m.Submit(context.Background(), func() error { return nil }, func(context.Context) error { return nil }))
	assert.Equal(t, []State{StateValidating, StateSubmitting, StateSuccess}, seen)

	seen = nil
	invalid := &ValidationError{Field: "amount", Message: "bad"}
	err := m.Submit(context.Background(), func() error { return invalid }, func(context.Context) error {
		t.Fatal("submit must not run after a failed validation")
		return nil
	})
	assert.ErrorIs(t, err, invalid)
	assert.Equal(t, []State{StateValidating, StateIdle}, seen)
	assert.Equal(t, invalid, m.Err())

	seen = nil
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Submit(context.Background(), func() error { return nil }, func(context.Context) error { return boom }), boom)
	assert.Equal(t, StateError, m.State())

	m.Reset()
	assert.Equal(t, StateIdle, m.State())
	assert.NoError(t, m.Err())
}

func TestMachine_PanicLeavesErrorState(t *testing.T) {
	var m Machine
	assert.Panics(t, func() {
		_ = m.Submit(context.Background(), func() error { return nil }, func(context.Context) error { panic("boom") })
	})
	assert.Equal(t, StateError, m.State())
	assert.False(t, m.Busy())
	assert.ErrorContains(t, m.Err(), "boom")

	require.NoError(t, m.Submit(context.Background(), func() error { return nil }, func(context.Context) error { return nil }))
}

type panickingUploader struct{}

func (panickingUploader) Upload(context.Context, resources.File, resources.UploadKind) (string, error) {
	panic("upload exploded")
}

func TestAttachment_PanicClears(t *testing.T) {
	var a Attachment
	assert.Panics(t, func() {
		_, _ = a.Attach(context.Background(), panickingUploader{}, resources.NewFile("a.png", "image/png", []byte("x")), resources.UploadPaymentProof)
	})
	assert.False(t, a.Uploading())
	assert.False(t, a.Info().Selected())
}

func TestRechargeForm_RejectsBadAmount(t *testing.T) {
	for _, amount := range []string{"-5", "abc", "0", ""} {
		t.Run(amount, func(t *testing.T) {
			creator := &fakeCreator{}
			n := notify.New(notify.DefaultConfig())
			defer n.Close()

			f := NewRechargeForm(creator, fakeUploader{}, n)
			fields := validRecharge()
			fields.Amount = amount
			f.SetFields(fields)

			err := f.Submit(context.Background())
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "amount", ve.Field)
			assert.Equal(t, int32(0), creator.calls.Load())
			assert.Equal(t, StateIdle, f.State())
			assert.Equal(t, fields, f.Fields(), "the form keeps what was typed")

			recent := n.Recent(1)
			require.Len(t, recent, 1)
			assert.Equal(t, ve.Message, recent[0].Message)
			if amount == "" {
				assert.Equal(t, MsgRequiredFields, ve.Message)
			} else {
				assert.Equal(t, MsgAmountNotPositive, ve.Message)
			}
		})
	}
}

func TestRechargeForm_RequiredFields(t *testing.T) {
	f := NewRechargeForm(&fakeCreator{}, fakeUploader{}, nil)
	f.SetFields(RechargeFields{Amount: "10", PaymentMethod: "MOBILE_MONEY"})

	var ve *ValidationError
	require.True(t, errors.As(f.Submit(context.Background()), &ve))
	assert.Equal(t, "payment_reference", ve.Field)
	assert.Equal(t, MsgRequiredFields, ve.Message)

	f.SetFields(RechargeFields{Amount: "10", PaymentMethod: "CASH", PaymentReference: "x"})
	require.True(t, errors.As(f.Submit(context.Background()), &ve))
	assert.Equal(t, MsgInvalidMethod, ve.Message)
}

func TestRechargeForm_NormalizesAmount(t *testing.T) {
	creator := &fakeCreator{}
	f := NewRechargeForm(creator, fakeUploader{}, nil)
	fields := validRecharge()
	fields.Amount = " 1500.50 "
	f.SetFields(fields)

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, "1500.5", creator.got.Amount)
	assert.Nil(t, creator.got.PaymentProof)
	assert.Equal(t, RechargeFields{}, f.Fields(), "success clears the form")
	assert.Equal(t, StateSuccess, f.State())
}

func TestRechargeForm_ErrorKeepsFields(t *testing.T) {
	creator := &fakeCreator{err: errors.New("status 400")}
	f := NewRechargeForm(creator, fakeUploader{url: "https://cdn/p.png"}, nil)
	f.SetFields(validRecharge())
	_, err := f.AttachProof(context.Background(), resources.NewFile("p.png", "image/png", []byte("x")))
	require.NoError(t, err)

	assert.Error(t, f.Submit(context.Background()))
	assert.Equal(t, StateError, f.State())
	assert.Equal(t, validRecharge(), f.Fields())
	assert.Equal(t, "https://cdn/p.png", f.Proof.URL())
	require.NotNil(t, creator.got.PaymentProof)
	assert.Equal(t, "https://cdn/p.png", *creator.got.PaymentProof)
}

func TestRechargeForm_SecondSubmitIgnored(t *testing.T) {
	creator := &fakeCreator{release: make(chan struct{})}
	f := NewRechargeForm(creator, fakeUploader{}, nil)
	f.SetFields(validRecharge())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, f.Submit(context.Background()))
	}()

	require.Eventually(t, func() bool { return f.State() == StateSubmitting }, time.Second, time.Millisecond)
	assert.ErrorIs(t, f.Submit(context.Background()), ErrSubmitInProgress)
	_, err := f.AttachProof(context.Background(), resources.NewFile("p.png", "image/png", []byte("x")))
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(creator.release)
	wg.Wait()
	assert.Equal(t, int32(1), creator.calls.Load())
}

func TestAttachment_FailureClears(t *testing.T) {
	f := NewRechargeForm(&fakeCreator{}, fakeUploader{err: errors.New("upload failed")}, nil)

	_, err := f.AttachProof(context.Background(), resources.NewFile("p.png", "image/png", []byte("x")))
	require.Error(t, err)

	info := f.Proof.Info()
	assert.False(t, info.Selected())
	assert.False(t, info.Uploaded())
	assert.False(t, info.Uploading)
}

func TestAttachment_Success(t *testing.T) {
	var a Attachment
	url, err := a.Attach(context.Background(), fakeUploader{url: "https://cdn/a.png"}, resources.NewFile("a.png", "image/png", []byte("xy")), resources.UploadPaymentProof)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a.png", url)

	info := a.Info()
	assert.True(t, info.Selected())
	assert.True(t, info.Uploaded())
	assert.Equal(t, int64(2), info.Size)

	a.Clear()
	assert.False(t, a.Info().Selected())
}

func TestPlatformForm_CreateRequiresImage(t *testing.T) {
	w := &fakePlatformWriter{}
	f := NewPlatformForm(w, fakeUploader{}, nil)
	in := f.Input()
	in.Name = "1xBet"
	f.SetInput(in)

	var ve *ValidationError
	require.True(t, errors.As(f.Submit(context.Background()), &ve))
	assert.Equal(t, MsgImageRequired, ve.Message)
	assert.Empty(t, w.created)
}

func TestPlatformForm_CreateSanitizesAndResets(t *testing.T) {
	w := &fakePlatformWriter{}
	f := NewPlatformForm(w, fakeUploader{url: "https://cdn/logo.png"}, nil)

	_, err := f.AttachImage(context.Background(), resources.NewFile("logo.png", "image/png", []byte("x")))
	require.NoError(t, err)

	in := f.Input()
	in.Name = "1xBet"
	in.Hash = ptr.To("")
	in.Cashdeskid = ptr.To(" ")
	in.Cashierpass = ptr.To("")
	// bounds are not cross-checked
	in.MinimunDeposit = 5000
	in.MaxDeposit = 10
	f.SetInput(in)

	require.NoError(t, f.Submit(context.Background()))
	require.Len(t, w.created, 1)
	sent := w.created[0]
	assert.Equal(t, "https://cdn/logo.png", sent.Image)
	assert.Nil(t, sent.Hash)
	assert.Nil(t, sent.Cashdeskid)
	assert.Nil(t, sent.Cashierpass)
	assert.Equal(t, float64(5000), sent.MinimunDeposit)

	assert.Equal(t, models.NewPlatformInput(), f.Input())
}

func TestPlatformForm_EditSendsUpdate(t *testing.T) {
	w := &fakePlatformWriter{}
	p := models.Platform{ID: "p1", Name: "Melbet", Image: "https://cdn/m.png", Enable: true, Hash: ptr.To("h")}
	f := EditPlatformForm(p, w, fakeUploader{err: errors.New("nope")}, nil)

	_, err := f.AttachImage(context.Background(), resources.NewFile("new.png", "image/png", []byte("x")))
	require.Error(t, err)
	assert.Equal(t, "https://cdn/m.png", f.Input().Image, "a failed upload keeps the previous image")

	in := f.Input()
	in.Enable = false
	f.SetInput(in)
	require.NoError(t, f.Submit(context.Background()))

	patch, ok := w.updated["p1"]
	require.True(t, ok)
	require.NotNil(t, patch.Enable)
	assert.False(t, *patch.Enable)
	require.NotNil(t, patch.Hash)
	assert.Equal(t, "h", *patch.Hash)
	assert.Empty(t, w.created)
}

// End to end against a fake API: one POST with the typed amount, a success
// notification, and a refetch of the recharge list.
func TestRechargeForm_EndToEnd(t *testing.T) {
	var (
		mu    sync.Mutex
		posts []map[string]any
		gets  int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == resources.RechargesPath:
			gets++
			_, _ = w.Write([]byte(`{"count":0,"next":null,"previous":null,"results":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == resources.RechargesPath:
			raw, _ := io.ReadAll(r.Body)
			var body map[string]any
			_ = json.Unmarshal(raw, &body)
			posts = append(posts, body)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":7}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := client.New(client.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	store := querycache.NewStore()
	n := notify.New(notify.DefaultConfig())
	defer n.Close()
	res := resources.New(resources.Deps{Client: c, Store: store, Notifier: n})

	ctx := context.Background()
	res.Recharges.Fetch(ctx, models.RechargeFilters{Page: models.Page{Page: 1}})

	f := NewRechargeForm(res.Recharges, res.Uploads, n)
	f.SetFields(validRecharge())
	require.NoError(t, f.Submit(ctx))

	mu.Lock()
	require.Len(t, posts, 1)
	assert.Equal(t, "200000", posts[0]["amount"])
	assert.Equal(t, "MOBILE_MONEY", posts[0]["payment_method"])
	assert.Equal(t, "TX123", posts[0]["payment_reference"])
	assert.NotContains(t, posts[0], "payment_proof")
	mu.Unlock()

	recent := n.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, resources.MsgRechargeCreated, recent[0].Message)

	res.Recharges.Fetch(ctx, models.RechargeFilters{Page: models.Page{Page: 1}})
	mu.Lock()
	assert.Equal(t, 2, gets)
	mu.Unlock()
}
