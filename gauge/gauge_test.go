package gauge

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFillsGaps(t *testing.T) {
	in := `date,discharge
2022-08-01,100
2022-08-02,
2022-08-04,130
2022-08-05,140
`
	st, err := Load(strings.NewReader(in), "frankfurt", 52.33, 14.55)
	require.NoError(t, err)

	require.Len(t, st.T, 5) // continuous calendar including the missing 08-03
	assert.Equal(t, time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC), st.T[0])

	// 100 .. 130 interpolated across the two missing days
	assert.InDelta(t, 110., st.Q[1], 1e-9)
	assert.InDelta(t, 120., st.Q[2], 1e-9)
	assert.InDelta(t, 140., st.Q[4], 1e-9)
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(strings.NewReader("date,discharge\n"), "x", 0, 0)
	assert.Error(t, err)
}

func TestSkillPerfect(t *testing.T) {
	in := `date,discharge
2022-08-01,100
2022-08-02,110
2022-08-03,120
2022-08-04,100
2022-08-05,90
`
	st, err := Load(strings.NewReader(in), "eisenhuettenstadt", 52.15, 14.64)
	require.NoError(t, err)

	// reanalysis calendar shifted by a day on either side
	tt := make([]time.Time, 7)
	sim := make([]float64, 7)
	for i := range tt {
		tt[i] = time.Date(2022, 7, 31, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * 24 * time.Hour)
	}
	copy(sim[1:], st.Q)
	sim[0], sim[6] = 1e9, 1e9 // outside the overlap, must be ignored

	sk := st.Skill(tt, sim)
	assert.Equal(t, 5, sk.N)
	assert.InDelta(t, 1., sk.NSE, 1e-9)
	assert.InDelta(t, 0., sk.RMSE, 1e-9)
}
