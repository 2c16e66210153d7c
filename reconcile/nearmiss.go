package reconcile

import (
	"strings"

	"github.com/forPelevin/gomoji"
)

// NearMiss pairs a lacking roster company with an unlisted supplier whose name
// differs only in emojis or whitespace. Matching stays exact; a near miss only
// points at a roster entry that probably needs fixing.
type NearMiss struct {
	Expected string `json:"expected"`
	Observed string `json:"observed"`
}

func findNearMisses(lacking, unlisted []string) []NearMiss {
	if len(lacking) == 0 || len(unlisted) == 0 {
		return nil
	}

	byKey := make(map[string]string, len(unlisted))
	for _, s := range unlisted {
		if _, ok := byKey[looseKey(s)]; !ok {
			byKey[looseKey(s)] = s
		}
	}

	var misses []NearMiss
	for _, company := range lacking {
		if observed, ok := byKey[looseKey(company)]; ok {
			misses = append(misses, NearMiss{Expected: company, Observed: observed})
		}
	}
	return misses
}

// looseKey strips emojis and collapses whitespace.
func looseKey(name string) string {
	return strings.Join(strings.Fields(gomoji.RemoveEmojis(name)), " ")
}
