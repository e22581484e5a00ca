package postgres

import (
	"github.com/risick/microcredito-api/internal/auth"
	"github.com/risick/microcredito-api/internal/domain/audit"
	borrowerdomain "github.com/risick/microcredito-api/internal/domain/borrower"
	loandomain "github.com/risick/microcredito-api/internal/domain/loan"
	paymentdomain "github.com/risick/microcredito-api/internal/domain/payment"
	userdomain "github.com/risick/microcredito-api/internal/domain/user"
	"github.com/risick/microcredito-api/internal/jobs"
	"github.com/risick/microcredito-api/internal/ws"
)

var (
	_ borrowerdomain.Repository       = (*BorrowerRepository)(nil)
	_ borrowerdomain.UserRepository   = (*UserRepository)(nil)
	_ borrowerdomain.OutboxRepository = (*OutboxRepository)(nil)
	_ userdomain.Repository           = (*UserRepository)(nil)
	_ auth.UserRepository             = (*UserRepository)(nil)
	_ loandomain.Repository           = (*LoanRepository)(nil)
	_ paymentdomain.Repository        = (*PaymentRepository)(nil)
	_ audit.Repository                = (*AuditRepository)(nil)
	_ jobs.OutboxRepository           = (*OutboxRepository)(nil)
	_ ws.RealtimeRepository           = (*WSRepository)(nil)
)
