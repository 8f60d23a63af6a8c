package repository

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLeadRepository_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "leads")
	repo, err := NewFileLeadRepository(dir)
	require.NoError(t, err)

	ctx := context.Background()
	for _, id := range []string{"LEAD-AAAAAAAAAA", "LEAD-BBBBBBBBBB"} {
		require.NoError(t, repo.Save(ctx, &domain.Lead{
			ID:        id,
			Inputs:    domain.QuoteInputs{Name: "Ana", Email: "ana@example.com", Phone: "555-0100", Consent: true},
			Estimate:  domain.PriceEstimate{Low: 1020, High: 1380, Mid: 1200, Currency: "CAD"},
			Timestamp: time.Now().UTC(),
		}))
	}

	f, err := os.Open(filepath.Join(dir, leadsFileName))
	require.NoError(t, err)
	defer f.Close()

	var leads []domain.Lead
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var lead domain.Lead
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &lead))
		leads = append(leads, lead)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, leads, 2)
	assert.Equal(t, "LEAD-AAAAAAAAAA", leads[0].ID)
	assert.Equal(t, "ana@example.com", leads[1].Inputs.Email)
	assert.Equal(t, int64(1200), leads[1].Estimate.Mid)
}
