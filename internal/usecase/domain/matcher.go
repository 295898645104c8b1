package domain

import "github.com/jacobboykin/kots/internal/entities"

// matchByLegacyNumber locates the version a pull request correlates to by
// its number. Pending versions are scanned before past ones. Versions
// that carry a commit SHA are tracked by the commit path and must never
// match here, even when their number matches.
func matchByLegacyNumber(pending, past []entities.Version, number int) *entities.Version {
	for i := range pending {
		if legacyMatch(pending[i], number) {
			return &pending[i]
		}
	}
	for i := range past {
		if legacyMatch(past[i], number) {
			return &past[i]
		}
	}
	return nil
}

func legacyMatch(v entities.Version, number int) bool {
	return v.CommitSHA == "" && v.PullRequestNumber != nil && *v.PullRequestNumber == number
}
