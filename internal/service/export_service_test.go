package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/remui-admin-api/internal/entity"
	"github.com/noah-isme/remui-admin-api/internal/models"
	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
)

func TestExportCSVFollowsFiltersAndSort(t *testing.T) {
	svc := NewExportService(newCountingStore(alice(), bob()), testBuilder(), 100, testWindow, nil, nil).WithClock(fixedClock)

	file, err := svc.Export(context.Background(), entity.Users("mdl_"), models.SearchSpec{
		Sort:     models.Sort{Field: "username", Direction: models.Desc},
		Page:     4,
		PageSize: 1,
	}, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "users-20261001.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t, 2, file.Rows)

	lines := strings.Split(strings.TrimSpace(string(file.Payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Username,Email,First name,Last name,City,Created,Last access,Suspended", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "bob02,"))
	assert.True(t, strings.HasSuffix(lines[1], ",Never,Yes"))
	assert.True(t, strings.HasPrefix(lines[2], "alice01,"))
}

func TestExportRespectsRowCap(t *testing.T) {
	svc := NewExportService(newCountingStore(manyUsers(20)...), testBuilder(), 5, testWindow, nil, nil).WithClock(fixedClock)

	file, err := svc.Export(context.Background(), entity.Users("mdl_"), models.SearchSpec{}, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, 5, file.Rows)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Payload, []byte("%PDF")))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	store := newCountingStore(alice())
	svc := NewExportService(store, testBuilder(), 5, testWindow, nil, nil)

	_, err := svc.Export(context.Background(), entity.Users("mdl_"), models.SearchSpec{}, "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, 0, store.calls())
}

func TestExportStoreError(t *testing.T) {
	store := newCountingStore(alice())
	store.err = errStoreDown
	svc := NewExportService(store, testBuilder(), 5, testWindow, nil, nil)

	_, err := svc.Export(context.Background(), entity.Users("mdl_"), models.SearchSpec{}, FormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrStore))
}
