package models

import (
	"errors"
	"fmt"
)

type TokenCategory string

const (
	TokenCategoryFood     TokenCategory = "food"
	TokenCategoryTravel   TokenCategory = "travel"
	TokenCategoryClothing TokenCategory = "clothing"
	TokenCategoryCoupons  TokenCategory = "coupons"
)

var (
	ErrInvalidCategory = errors.New("invalid token category")
	ErrSameCategory    = errors.New("cannot transfer tokens to the same category")
	ErrInvalidAmount   = errors.New("token amount must be a positive integer")
)

// InsufficientTokensError carries enough detail for the client to explain
// the shortfall.
type InsufficientTokensError struct {
	Category  TokenCategory
	Required  int
	Available int
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("insufficient %s tokens: need %d, have %d", e.Category, e.Required, e.Available)
}

func (e *InsufficientTokensError) Shortfall() int {
	return e.Required - e.Available
}

func (c TokenCategory) Valid() bool {
	switch c {
	case TokenCategoryFood, TokenCategoryTravel, TokenCategoryClothing, TokenCategoryCoupons:
		return true
	}
	return false
}

func TokenCategories() []TokenCategory {
	return []TokenCategory{TokenCategoryFood, TokenCategoryTravel, TokenCategoryClothing, TokenCategoryCoupons}
}

// TokenWallet holds per-category reward balances. Total is derived and
// recomputed on every mutation, never trusted as stored.
type TokenWallet struct {
	Food     int `json:"food" bson:"food"`
	Travel   int `json:"travel" bson:"travel"`
	Clothing int `json:"clothing" bson:"clothing"`
	Coupons  int `json:"coupons" bson:"coupons"`
	Total    int `json:"total" bson:"total"`
}

func (w *TokenWallet) Balance(category TokenCategory) int {
	switch category {
	case TokenCategoryFood:
		return w.Food
	case TokenCategoryTravel:
		return w.Travel
	case TokenCategoryClothing:
		return w.Clothing
	case TokenCategoryCoupons:
		return w.Coupons
	}
	return 0
}

func (w *TokenWallet) set(category TokenCategory, balance int) {
	switch category {
	case TokenCategoryFood:
		w.Food = balance
	case TokenCategoryTravel:
		w.Travel = balance
	case TokenCategoryClothing:
		w.Clothing = balance
	case TokenCategoryCoupons:
		w.Coupons = balance
	}
}

func (w *TokenWallet) recomputeTotal() {
	w.Total = w.Food + w.Travel + w.Clothing + w.Coupons
}

func (w *TokenWallet) Credit(category TokenCategory, amount int) error {
	if !category.Valid() {
		return ErrInvalidCategory
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	w.set(category, w.Balance(category)+amount)
	w.recomputeTotal()

	return nil
}

func (w *TokenWallet) Debit(category TokenCategory, amount int) error {
	if !category.Valid() {
		return ErrInvalidCategory
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	balance := w.Balance(category)
	if balance < amount {
		return &InsufficientTokensError{Category: category, Required: amount, Available: balance}
	}

	w.set(category, balance-amount)
	w.recomputeTotal()

	return nil
}

// Transfer debits first and short-circuits on failure, so a failed transfer
// never leaves the wallet partially applied.
func (w *TokenWallet) Transfer(from, to TokenCategory, amount int) error {
	if !from.Valid() || !to.Valid() {
		return ErrInvalidCategory
	}
	if from == to {
		return ErrSameCategory
	}

	if err := w.Debit(from, amount); err != nil {
		return err
	}

	return w.Credit(to, amount)
}
