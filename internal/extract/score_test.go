package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var royaltyCases = []string{
	"Rogers, Coleridge and White Ltd",
	"HarperCollins UK",
	"27 May 2022",
	"Hodder and Stoughton UK",
	"EC4Y 0DZ",
	"27 October 2022",
}

func TestScoreSubstrings(t *testing.T) {
	raw := `[{"publisher": "HarperCollins UK"}, {"agent": "Rogers, Coleridge and White Ltd"}, {"date": "27 May 2022"}]`
	assert.Equal(t, 3, ScoreSubstrings(raw, royaltyCases))
}

func TestScoreSubstrings_CaseSensitive(t *testing.T) {
	assert.Equal(t, 0, ScoreSubstrings("harpercollins uk", royaltyCases))
}

func TestScoreSubstrings_DuplicatesCountIndependently(t *testing.T) {
	assert.Equal(t, 2, ScoreSubstrings("EC4Y 0DZ", []string{"EC4Y 0DZ", "EC4Y 0DZ"}))
}

func TestScoreSubstrings_Empty(t *testing.T) {
	assert.Equal(t, 0, ScoreSubstrings("anything", nil))
	assert.Equal(t, 0, ScoreSubstrings("", royaltyCases))
}

func TestScoreSubstrings_AddingPresentCaseIncrementsByOne(t *testing.T) {
	raw := "Payments from Hodder and Stoughton UK, Carmelite House, London EC4Y 0DZ"
	base := ScoreSubstrings(raw, royaltyCases)

	for _, sub := range []string{"Carmelite House", "London", "Payments from"} {
		cases := append(append([]string{}, royaltyCases...), sub)
		assert.Equal(t, base+1, ScoreSubstrings(raw, cases), "added %q", sub)
	}
}
