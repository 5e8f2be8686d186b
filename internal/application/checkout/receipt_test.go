package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/application/checkout"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

type fakeRenderer struct {
	store *entity.Store
	lines []checkout.ReceiptLine
	err   error
}

func (r *fakeRenderer) RenderReceipt(_ context.Context, _ *entity.Invoice, store *entity.Store, lines []checkout.ReceiptLine) ([]byte, error) {
	r.store = store
	r.lines = lines
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-fake"), nil
}

func TestReceipt_Download(t *testing.T) {
	f := newFixture(t)
	f.stock(t, "v1", 5)
	repos := f.st.Repos()
	renderer := &fakeRenderer{}
	uc := checkout.NewReceiptUseCase(repos.Invoices, repos.Stores, repos.Variants, renderer)

	sold, err := f.engine.Checkout(t.Context(), cart(line("v1", 2)))
	require.NoError(t, err)

	doc, name, err := uc.Download(t.Context(), sold.Invoice.ID, entity.Scope{})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(doc))
	assert.Equal(t, "ticket_"+sold.Invoice.ID+".pdf", name)
	assert.Equal(t, "Centro", renderer.store.Name)
	require.Len(t, renderer.lines, 1)
	assert.Equal(t, "SKU-v1", renderer.lines[0].SKU)
	assert.Equal(t, "2000", renderer.lines[0].LineTotal.String())

	_, _, err = uc.Download(t.Context(), sold.Invoice.ID, entity.Scope{StoreID: "otra", Role: entity.RoleCashier})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	renderer.err = errors.New("sin fuentes")
	_, _, err = uc.Download(t.Context(), sold.Invoice.ID, entity.Scope{})
	assert.ErrorIs(t, err, renderer.err)
}

func TestReceipt_OnlyCompleted(t *testing.T) {
	f := newFixture(t)
	f.stock(t, "v1", 5)
	repos := f.st.Repos()
	uc := checkout.NewReceiptUseCase(repos.Invoices, repos.Stores, repos.Variants, &fakeRenderer{})

	held, err := f.engine.Hold(t.Context(), cart(line("v1", 1)))
	require.NoError(t, err)

	_, _, err = uc.Download(t.Context(), held.Invoice.ID, entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, _, err = uc.Download(t.Context(), "missing", entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
