package impl

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartextract/internal/domain/entity"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/usecase"
)

func newTemplateService() (*templateService, *fakeTemplateRepo) {
	templates := newFakeTemplateRepo()

	factory := &fakeRepoFactory{
		users:       newFakeUserRepo(),
		documents:   newFakeDocumentRepo(),
		extractions: newFakeExtractionRepo(),
		templates:   templates,
	}

	svc := NewTemplateService(TemplateServiceParams{
		TxManager:    &fakeTxManager{factory: factory},
		TemplateRepo: templates,
		Logger:       slog.Default(),
	}).(*templateService)

	return svc, templates
}

func TestTemplateService_CreateAndGet(t *testing.T) {
	svc, _ := newTemplateService()
	owner := uuid.New()

	tpl, err := svc.Create(context.Background(), owner, &usecase.TemplateInput{
		Name:         "Invoice fields",
		Description:  "Totals and dates",
		DocumentType: "INVOICE",
		Fields: []entity.TemplateField{
			{Name: "total", Type: "number", Required: true},
			{Name: "due_date", Type: "date"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentTypeInvoice, tpl.DocumentType, "type tag is normalized")

	got, err := svc.Get(context.Background(), tpl.ID, owner)
	require.NoError(t, err)
	assert.Len(t, got.Fields, 2)

	// Unknown type tags collapse to "other".
	other, err := svc.Create(context.Background(), owner, &usecase.TemplateInput{
		Name:         "Misc",
		DocumentType: "mystery",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentTypeOther, other.DocumentType)
}

func TestTemplateService_OwnershipScoping(t *testing.T) {
	svc, _ := newTemplateService()
	owner := uuid.New()
	stranger := uuid.New()

	tpl, err := svc.Create(context.Background(), owner, &usecase.TemplateInput{Name: "Mine"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), tpl.ID, stranger)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.Update(context.Background(), tpl.ID, stranger, &usecase.TemplateInput{Name: "Stolen"})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = svc.Delete(context.Background(), tpl.ID, stranger)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	// The owner still sees the original.
	got, err := svc.Get(context.Background(), tpl.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Name)
}

func TestTemplateService_UpdateAndDelete(t *testing.T) {
	svc, _ := newTemplateService()
	owner := uuid.New()

	tpl, err := svc.Create(context.Background(), owner, &usecase.TemplateInput{Name: "Draft"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), tpl.ID, owner, &usecase.TemplateInput{
		Name:         "Final",
		DocumentType: "receipt",
		Fields:       []entity.TemplateField{{Name: "vendor", Type: "text"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Name)
	assert.Equal(t, entity.DocumentTypeReceipt, updated.DocumentType)

	require.NoError(t, svc.Delete(context.Background(), tpl.ID, owner))

	list, err := svc.List(context.Background(), &usecase.ListTemplatesInput{OwnerID: owner})
	require.NoError(t, err)
	assert.Empty(t, list)
}
