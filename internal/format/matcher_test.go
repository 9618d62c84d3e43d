package format

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/common"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

// fakeFormatStore implements Store with fixed data for matcher tests.
type fakeFormatStore struct {
	bySignature map[string]*model.LearnedFormat
	list        []model.LearnedFormat
	getErr      error
	listErr     error
}

func (f *fakeFormatStore) GetLearnedFormat(_ context.Context, _, signature string) (*model.LearnedFormat, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	lf, ok := f.bySignature[signature]
	if !ok {
		return nil, common.ErrNotFound
	}
	return lf, nil
}

func (f *fakeFormatStore) ListLearnedFormats(_ context.Context, _ string) ([]model.LearnedFormat, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func TestMatcher_ExactMatch(t *testing.T) {
	headers := []string{"Group No", "Company", "Commission Earned"}
	structure := Structure{ColumnCount: 3, RowCount: 25, HasFinancialKeywords: true}
	signature := Signature(headers, structure)

	learned := &model.LearnedFormat{
		CarrierID:    "carrier-1",
		Signature:    signature,
		Headers:      headers,
		FieldMapping: map[string]string{"commission earned": "Commission Earned"},
	}
	store := &fakeFormatStore{
		bySignature: map[string]*model.LearnedFormat{signature: learned},
	}

	match, score, err := NewMatcher(store).FindMatch(context.Background(), "carrier-1", headers, structure)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 1.0, score)
	assert.Equal(t, signature, match.Signature)
}

func TestMatcher_EmptyMappingFallsToFuzzy(t *testing.T) {
	headers := []string{"Group No", "Company", "Commission Earned"}
	structure := Structure{ColumnCount: 3, RowCount: 25, HasFinancialKeywords: true}
	signature := Signature(headers, structure)

	// An exact signature hit with no field mapping is useless for
	// auto-apply: the matcher must not return it as an exact match.
	learned := &model.LearnedFormat{
		CarrierID: "carrier-1",
		Signature: signature,
		Headers:   headers,
	}
	store := &fakeFormatStore{
		bySignature: map[string]*model.LearnedFormat{signature: learned},
		list:        nil,
	}

	match, score, err := NewMatcher(store).FindMatch(context.Background(), "carrier-1", headers, structure)
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Zero(t, score)
}

func TestMatcher_FuzzySubsetHeaders(t *testing.T) {
	learnedHeaders := []string{"Group No", "Company", "Premium", "Commission Earned"}
	newHeaders := []string{"Group No", "Company", "Premium"}
	structure := StructureFor(newHeaders, nil)

	store := &fakeFormatStore{
		list: []model.LearnedFormat{
			{
				CarrierID:    "carrier-1",
				Signature:    "other-signature",
				Headers:      learnedHeaders,
				FieldMapping: map[string]string{"commission earned": "Commission Earned"},
			},
		},
	}

	match, score, err := NewMatcher(store).FindMatch(context.Background(), "carrier-1", newHeaders, structure)
	require.NoError(t, err)
	require.NotNil(t, match)

	// Three of four headers shared and aligned: 0.7*0.75 + 0.3*0.75.
	assert.InDelta(t, 0.75, score, 0.001)
	assert.Equal(t, "other-signature", match.Signature)
}

func TestMatcher_NoOverlap(t *testing.T) {
	store := &fakeFormatStore{
		list: []model.LearnedFormat{
			{
				CarrierID:    "carrier-1",
				Signature:    "sig",
				Headers:      []string{"Policy", "Insured", "Effective Date"},
				FieldMapping: map[string]string{"premium": "Premium"},
			},
		},
	}

	headers := []string{"Group No", "Company", "Commission Earned"}
	match, score, err := NewMatcher(store).FindMatch(context.Background(), "carrier-1", headers, StructureFor(headers, nil))
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Zero(t, score)
}

func TestMatcher_BelowThresholdDiscarded(t *testing.T) {
	// One shared header out of five total is well under the 0.5 floor.
	store := &fakeFormatStore{
		list: []model.LearnedFormat{
			{
				CarrierID:    "carrier-1",
				Signature:    "sig",
				Headers:      []string{"Group No", "Insured", "Effective Date"},
				FieldMapping: map[string]string{"premium": "Premium"},
			},
		},
	}

	headers := []string{"Group No", "Company", "Commission Earned"}
	match, score, err := NewMatcher(store).FindMatch(context.Background(), "carrier-1", headers, StructureFor(headers, nil))
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Zero(t, score)
}

func TestMatcher_PicksBestCandidate(t *testing.T) {
	headers := []string{"Group No", "Company", "Commission Earned"}

	store := &fakeFormatStore{
		list: []model.LearnedFormat{
			{
				CarrierID:    "carrier-1",
				Signature:    "weaker",
				Headers:      []string{"Group No", "Company", "Premium", "Commission Earned"},
				FieldMapping: map[string]string{"commission earned": "Commission Earned"},
			},
			{
				CarrierID:    "carrier-1",
				Signature:    "stronger",
				Headers:      []string{"Group No", "Company", "Commission Earned"},
				FieldMapping: map[string]string{"commission earned": "Commission Earned"},
			},
		},
	}

	match, score, err := NewMatcher(store).FindMatch(context.Background(), "carrier-1", headers, Structure{ColumnCount: 3, RowCount: 500})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "stronger", match.Signature)
	assert.InDelta(t, 1.0, score, 0.001)
}

func TestMatcher_StoreErrors(t *testing.T) {
	headers := []string{"Group No", "Company", "Commission Earned"}
	structure := StructureFor(headers, nil)

	t.Run("lookup failure propagates", func(t *testing.T) {
		store := &fakeFormatStore{getErr: errors.New("disk on fire")}
		_, _, err := NewMatcher(store).FindMatch(context.Background(), "carrier-1", headers, structure)
		assert.Error(t, err)
	})

	t.Run("not found is not an error", func(t *testing.T) {
		store := &fakeFormatStore{}
		match, score, err := NewMatcher(store).FindMatch(context.Background(), "carrier-1", headers, structure)
		require.NoError(t, err)
		assert.Nil(t, match)
		assert.Zero(t, score)
	})

	t.Run("list failure propagates", func(t *testing.T) {
		store := &fakeFormatStore{listErr: errors.New("disk still on fire")}
		_, _, err := NewMatcher(store).FindMatch(context.Background(), "carrier-1", headers, structure)
		assert.Error(t, err)
	})
}

func TestHeaderSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{
			name: "identical",
			a:    []string{"group no", "company"},
			b:    []string{"group no", "company"},
			want: 1.0,
		},
		{
			name: "subset of four",
			a:    []string{"group no", "company", "premium"},
			b:    []string{"group no", "company", "premium", "commission earned"},
			want: 0.75,
		},
		{
			name: "reordered columns",
			a:    []string{"company", "group no"},
			b:    []string{"group no", "company"},
			want: 0.7,
		},
		{
			name: "disjoint",
			a:    []string{"policy", "insured"},
			b:    []string{"group no", "company"},
			want: 0,
		},
		{
			name: "empty side",
			a:    nil,
			b:    []string{"group no"},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, headerSimilarity(tt.a, tt.b), 0.001)
		})
	}
}
