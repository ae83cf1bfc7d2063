package notifications

import (
	"fmt"
	"html"

	"github.com/benerin-indonesia/benerin/models"
	"github.com/shopspring/decimal"
)

func rupiah(d decimal.Decimal) string {
	if d.IsInteger() {
		return "Rp " + d.StringFixed(0)
	}
	return "Rp " + d.StringFixed(2)
}

func PayoutRequested(tech models.Technician, payout models.Payout) {
	SendEmail(
		tech.FullName,
		tech.Email,
		"Permintaan pencairan dana diterima",
		fmt.Sprintf("<h1>Pencairan Dana</h1><p>Halo %s,</p><p>Permintaan pencairan sebesar <b>%s</b> ke rekening %s %s (%s) sudah kami terima dan sedang diproses.</p>",
			html.EscapeString(tech.FullName), rupiah(payout.Amount),
			html.EscapeString(payout.BankName), html.EscapeString(payout.AccountNumber), html.EscapeString(payout.AccountName)),
	)
}

func PayoutProcessed(tech models.Technician, payout models.Payout) {
	if payout.Status == models.PayoutPaid {
		SendEmail(
			tech.FullName,
			tech.Email,
			"Pencairan dana berhasil",
			fmt.Sprintf("<h1>Pencairan Berhasil</h1><p>Halo %s,</p><p>Dana sebesar <b>%s</b> sudah ditransfer ke rekening %s %s.</p>",
				html.EscapeString(tech.FullName), rupiah(payout.Amount),
				html.EscapeString(payout.BankName), html.EscapeString(payout.AccountNumber)),
		)
		return
	}

	note := ""
	if payout.Note != nil {
		note = *payout.Note
	}
	SendEmail(
		tech.FullName,
		tech.Email,
		"Pencairan dana ditolak",
		fmt.Sprintf("<h1>Pencairan Ditolak</h1><p>Halo %s,</p><p>Permintaan pencairan sebesar <b>%s</b> ditolak dan saldo sudah dikembalikan.</p><p><b>Catatan:</b> %s</p>",
			html.EscapeString(tech.FullName), rupiah(payout.Amount), html.EscapeString(note)),
	)
}
