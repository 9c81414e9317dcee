package wallet

import (
	"context"
	"fmt"

	"github.com/mcoot/arcade-go/internal/model"
)

// SourceGame tags credits earned by playing
const SourceGame = "game"

// Credit is a coin grant sent to the wallet service
type Credit struct {
	UserID      model.UserID
	Amount      int
	Source      string
	GameID      model.GameID
	GameScore   int
	Description string
}

// ForScore builds the credit for an accepted submission
func ForScore(rec *model.ScoreRecord, gameName string) Credit {
	return Credit{
		UserID:      rec.UserID,
		Amount:      rec.CoinsEarned,
		Source:      SourceGame,
		GameID:      rec.GameID,
		GameScore:   rec.Score,
		Description: fmt.Sprintf("Earned %d coins from %s", rec.CoinsEarned, gameName),
	}
}

// Crediter delivers a credit to the wallet
type Crediter interface {
	Credit(ctx context.Context, credit Credit) error
}

// NopCrediter drops every credit; used when no wallet is configured
type NopCrediter struct{}

// Credit does nothing
func (NopCrediter) Credit(context.Context, Credit) error {
	return nil
}
