package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tanakrit/installment-tracker/internal/domain"
	"github.com/tanakrit/installment-tracker/internal/ledger"
)

type saleRepository struct {
	db *sqlx.DB
}

func NewSaleRepository(db *sqlx.DB) SaleRepository {
	return &saleRepository{db: db}
}

const saleColumns = `
	id, name, phone, address, product_type, product_type_other, product_model, serial_number,
	cost_price, cost_bonus, down_payment_for_purchase,
	selling_price, customer_down_payment, down_payment_installment, down_payment_months, down_payment_monthly,
	installment_months, monthly_payment, payment_due_day,
	remaining_installment, total_profit, current_profit, status,
	created_at, updated_at, completed_at
`

func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`

	_, err = tx.ExecContext(ctx, query,
		sale.ID, sale.Name, sale.Phone, sale.Address,
		sale.ProductType, sale.ProductOther, sale.ProductModel, sale.SerialNumber,
		sale.CostPrice, sale.CostBonus, sale.DownPaymentForPurchase,
		sale.SellingPrice, sale.CustomerDownPayment, sale.DownPaymentInstallment,
		sale.DownPaymentMonths, sale.DownPaymentMonthly,
		sale.InstallmentMonths, sale.MonthlyPayment, sale.PaymentDueDay,
		sale.RemainingInstallment, sale.TotalProfit, sale.CurrentProfit, sale.Status,
		sale.CreatedAt, sale.UpdatedAt, sale.CompletedAt,
	)
	if err != nil {
		return err
	}

	if err = insertLines(ctx, tx, sale); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`

	var sale domain.Sale
	if err := r.db.GetContext(ctx, &sale, query, id); err != nil {
		return nil, err
	}

	if err := r.loadLines(ctx, []*domain.Sale{&sale}); err != nil {
		return nil, err
	}

	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, status string) ([]*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var sales []*domain.Sale
	if err := r.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, err
	}

	if err := r.loadLines(ctx, sales); err != nil {
		return nil, err
	}

	return sales, nil
}

func (r *saleRepository) Replace(ctx context.Context, sale *domain.Sale) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Full delete-and-recreate of the line sets. Replacing beats diffing an
	// edited schedule against the stored one.
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM card_payments WHERE card_usage_id IN (SELECT id FROM card_usages WHERE sale_id = $1)`,
		sale.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM card_usages WHERE sale_id = $1`, sale.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM installments WHERE sale_id = $1`, sale.ID); err != nil {
		return err
	}

	query := `
		UPDATE sales SET
			name = $2, phone = $3, address = $4,
			product_type = $5, product_type_other = $6, product_model = $7, serial_number = $8,
			cost_price = $9, cost_bonus = $10, down_payment_for_purchase = $11,
			selling_price = $12, customer_down_payment = $13, down_payment_installment = $14,
			down_payment_months = $15, down_payment_monthly = $16,
			installment_months = $17, monthly_payment = $18, payment_due_day = $19,
			remaining_installment = $20, total_profit = $21, current_profit = $22, status = $23,
			updated_at = $24, completed_at = $25
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query,
		sale.ID, sale.Name, sale.Phone, sale.Address,
		sale.ProductType, sale.ProductOther, sale.ProductModel, sale.SerialNumber,
		sale.CostPrice, sale.CostBonus, sale.DownPaymentForPurchase,
		sale.SellingPrice, sale.CustomerDownPayment, sale.DownPaymentInstallment,
		sale.DownPaymentMonths, sale.DownPaymentMonthly,
		sale.InstallmentMonths, sale.MonthlyPayment, sale.PaymentDueDay,
		sale.RemainingInstallment, sale.TotalProfit, sale.CurrentProfit, sale.Status,
		time.Now(), sale.CompletedAt,
	)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}

	if err = insertLines(ctx, tx, sale); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *saleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM card_payments WHERE card_usage_id IN (SELECT id FROM card_usages WHERE sale_id = $1)`,
		id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM card_usages WHERE sale_id = $1`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM installments WHERE sale_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

func (r *saleRepository) GetInstallment(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	query := `
		SELECT id, sale_id, installment_number, due_date, amount, paid, paid_date
		FROM installments
		WHERE id = $1
	`

	var line domain.Installment
	if err := r.db.GetContext(ctx, &line, query, id); err != nil {
		return nil, err
	}

	return &line, nil
}

func (r *saleRepository) MarkInstallmentPaid(ctx context.Context, installmentID uuid.UUID, paidDate time.Time) error {
	query := `
		UPDATE installments
		SET paid = true, paid_date = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, installmentID, paidDate)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *saleRepository) UpdateDerived(ctx context.Context, saleID uuid.UUID, result ledger.Result) error {
	query := `
		UPDATE sales
		SET remaining_installment = $2, current_profit = $3, status = $4, completed_at = $5, updated_at = $6
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		saleID,
		result.RemainingInstallment,
		result.CurrentProfit,
		result.Status,
		result.CompletedAt,
		time.Now(),
	)

	return err
}

// insertLines writes a sale's installments, card usages and card payment
// periods inside the caller's transaction.
func insertLines(ctx context.Context, tx *sqlx.Tx, sale *domain.Sale) error {
	instQuery := `
		INSERT INTO installments (id, sale_id, installment_number, due_date, amount, paid, paid_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, line := range sale.Installments {
		if _, err := tx.ExecContext(ctx, instQuery,
			line.ID, line.SaleID, line.Number, line.DueDate, line.Amount, line.Paid, line.PaidDate,
		); err != nil {
			return err
		}
	}

	usageQuery := `
		INSERT INTO card_usages (id, credit_card_id, sale_id, amount, installments, monthly_payment, remaining_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	paymentQuery := `
		INSERT INTO card_payments (id, card_usage_id, installment_number, due_date, amount, paid, paid_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, usage := range sale.CardUsages {
		if _, err := tx.ExecContext(ctx, usageQuery,
			usage.ID, usage.CreditCardID, usage.SaleID, usage.Amount,
			usage.InstallmentsCount, usage.MonthlyPayment, usage.RemainingAmount, usage.CreatedAt,
		); err != nil {
			return err
		}
		for _, payment := range usage.Payments {
			if _, err := tx.ExecContext(ctx, paymentQuery,
				payment.ID, payment.CardUsageID, payment.Number, payment.DueDate,
				payment.Amount, payment.Paid, payment.PaidDate,
			); err != nil {
				return err
			}
		}
	}

	return nil
}

// loadLines attaches installments and card usages to the given sales.
func (r *saleRepository) loadLines(ctx context.Context, sales []*domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(sales))
	bySale := make(map[uuid.UUID]*domain.Sale, len(sales))
	for _, sale := range sales {
		ids = append(ids, sale.ID)
		bySale[sale.ID] = sale
	}

	var installments []*domain.Installment
	instQuery := `
		SELECT id, sale_id, installment_number, due_date, amount, paid, paid_date
		FROM installments
		WHERE sale_id = ANY($1)
		ORDER BY installment_number
	`
	if err := r.db.SelectContext(ctx, &installments, instQuery, pq.Array(ids)); err != nil {
		return err
	}
	for _, line := range installments {
		sale := bySale[line.SaleID]
		sale.Installments = append(sale.Installments, line)
	}

	var usages []*domain.CardUsage
	usageQuery := `
		SELECT id, credit_card_id, sale_id, amount, installments, monthly_payment, remaining_amount, created_at
		FROM card_usages
		WHERE sale_id = ANY($1)
		ORDER BY created_at
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
			sale := bySale[usage.SaleID]
			sale.CardUsages = append(sale.CardUsages, usage)
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

	return nil
}
