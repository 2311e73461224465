package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tanakrit/installment-tracker/internal/domain"
)

type cardRepository struct {
	db *sqlx.DB
}

func NewCardRepository(db *sqlx.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Create(ctx context.Context, card *domain.CreditCard) error {
	query := `
		INSERT INTO credit_cards (id, name, credit_limit, due_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		card.ID,
		card.Name,
		card.CreditLimit,
		card.DueDay,
		card.CreatedAt,
		card.UpdatedAt,
	)

	return err
}

func (r *cardRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditCard, error) {
	query := `
		SELECT id, name, credit_limit, due_day, created_at, updated_at
		FROM credit_cards
		WHERE id = $1
	`

	var card domain.CreditCard
	if err := r.db.GetContext(ctx, &card, query, id); err != nil {
		return nil, err
	}

	if err := r.loadUsages(ctx, []*domain.CreditCard{&card}); err != nil {
		return nil, err
	}

	return &card, nil
}

func (r *cardRepository) List(ctx context.Context) ([]*domain.CreditCard, error) {
	query := `
		SELECT id, name, credit_limit, due_day, created_at, updated_at
		FROM credit_cards
		ORDER BY created_at DESC
	`

	var cards []*domain.CreditCard
	if err := r.db.SelectContext(ctx, &cards, query); err != nil {
		return nil, err
	}

	if err := r.loadUsages(ctx, cards); err != nil {
		return nil, err
	}

	return cards, nil
}

func (r *cardRepository) Update(ctx context.Context, card *domain.CreditCard) error {
	query := `
		UPDATE credit_cards
		SET name = $2, credit_limit = $3, due_day = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		card.ID,
		card.Name,
		card.CreditLimit,
		card.DueDay,
		time.Now(),
	)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *cardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM card_payments WHERE card_usage_id IN (SELECT id FROM card_usages WHERE credit_card_id = $1)`,
		id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM card_usages WHERE credit_card_id = $1`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM card_repayments WHERE credit_card_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

func (r *cardRepository) RecordRepayment(ctx context.Context, repayment *domain.CardRepayment, usages []*domain.CardUsage) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO card_repayments (id, credit_card_id, payment_date, amount, remaining_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err = tx.ExecContext(ctx, query,
		repayment.ID,
		repayment.CreditCardID,
		repayment.PaymentDate,
		repayment.Amount,
		repayment.RemainingBalance,
		repayment.CreatedAt,
	); err != nil {
		return err
	}

	usageQuery := `UPDATE card_usages SET remaining_amount = $2 WHERE id = $1`
	for _, usage := range usages {
		if _, err = tx.ExecContext(ctx, usageQuery, usage.ID, usage.RemainingAmount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *cardRepository) ListRepayments(ctx context.Context, cardID uuid.UUID) ([]*domain.CardRepayment, error) {
	query := `
		SELECT id, credit_card_id, payment_date, amount, remaining_balance, created_at
		FROM card_repayments
		WHERE credit_card_id = $1
		ORDER BY payment_date DESC
	`

	var repayments []*domain.CardRepayment
	if err := r.db.SelectContext(ctx, &repayments, query, cardID); err != nil {
		return nil, err
	}

	return repayments, nil
}

// loadUsages attaches usages (with their payment periods and sale info) and
// repayments to the given cards.
func (r *cardRepository) loadUsages(ctx context.Context, cards []*domain.CreditCard) error {
	if len(cards) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(cards))
	byCard := make(map[uuid.UUID]*domain.CreditCard, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
		byCard[card.ID] = card
	}

	var usages []*domain.CardUsage
	usageQuery := `
		SELECT u.id, u.credit_card_id, u.sale_id, u.amount, u.installments,
		       u.monthly_payment, u.remaining_amount, u.created_at,
		       s.name AS sale_name, s.product_model, s.status AS sale_status
		FROM card_usages u
		JOIN sales s ON s.id = u.sale_id
		WHERE u.credit_card_id = ANY($1)
		ORDER BY u.created_at
	`
	if err := r.db.SelectContext(ctx, &usages, usageQuery, pq.Array(ids)); err != nil {
		return err
	}

	if len(usages) > 0 {
		usageIDs := make([]uuid.UUID, 0, len(usages))
		byUsage := make(map[uuid.UUID]*domain.CardUsage, len(usages))
		for _, usage := range usages {
			usageIDs = append(usageIDs, usage.ID)
			byUsage[usage.ID] = usage
			card := byCard[usage.CreditCardID]
			card.Usages = append(card.Usages, usage)
		}

		var payments []*domain.CardPayment
		paymentQuery := `
			SELECT id, card_usage_id, installment_number, due_date, amount, paid, paid_date
			FROM card_payments
			WHERE card_usage_id = ANY($1)
			ORDER BY installment_number
		`
		if err := r.db.SelectContext(ctx, &payments, paymentQuery, pq.Array(usageIDs)); err != nil {
			return err
		}
		for _, payment := range payments {
			usage := byUsage[payment.CardUsageID]
			usage.Payments = append(usage.Payments, payment)
		}
	}

	var repayments []*domain.CardRepayment
	repaymentQuery := `
		SELECT id, credit_card_id, payment_date, amount, remaining_balance, created_at
		FROM card_repayments
		WHERE credit_card_id = ANY($1)
		ORDER BY payment_date DESC
	`
	if err := r.db.SelectContext(ctx, &repayments, repaymentQuery, pq.Array(ids)); err != nil {
		return err
	}
	for _, repayment := range repayments {
		card := byCard[repayment.CreditCardID]
		card.Repayments = append(card.Repayments, repayment)
	}

	return nil
}
