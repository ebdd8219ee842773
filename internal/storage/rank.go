package storage

import (
	"sort"

	"github.com/ijo-project/ijo-backend/internal/model"
)

// ScoreFor returns the value an account is ranked by for the given variant
func ScoreFor(account *model.Account, variant string) int {
	if variant == "" || variant == model.LeaderboardAll {
		return account.TotalScore
	}
	return account.GameScores[variant]
}

// Rank orders student accounts by score descending and keeps the first q.Limit.
// Ties go to the earlier registration, then to the lower id, so the order is stable
// across calls. Admin accounts never appear. Backends without a native ordered query use this.
func Rank(accounts []*model.Account, q LeaderboardQuery) []*model.Account {
	ranked := make([]*model.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.IsAdmin() {
			continue
		}
		ranked = append(ranked, a)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := ScoreFor(ranked[i], q.Variant), ScoreFor(ranked[j], q.Variant)
		if si != sj {
			return si > sj
		}
		if !ranked[i].CreatedAt.Equal(ranked[j].CreatedAt) {
			return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
		}
		return ranked[i].ID < ranked[j].ID
	})

	if q.Limit > 0 && len(ranked) > q.Limit {
		ranked = ranked[:q.Limit]
	}
	return ranked
}
