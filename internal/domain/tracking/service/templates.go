package service

import (
	"fmt"

	"warranty_shop/internal/domain/tracking/model"
)

func poundsOf(pence int64) string {
	return fmt.Sprintf("£%.2f", float64(pence)/100)
}

func welcomeHTML(e WelcomeEmail) string {
	return fmt.Sprintf(`<html><body>
<h1>Welcome, %s</h1>
<p>Your <strong>%s</strong> warranty for vehicle <strong>%s</strong> is now active.</p>
<p>Your warranty reference is <strong>%s</strong>. Cover runs until <strong>%s</strong>.</p>
<p>Keep this email safe; you will need the reference when making a claim.</p>
</body></html>`,
		e.Name, e.Plan, e.Registration, e.Reference, e.EndDate.Format("2 January 2006"))
}

func welcomeText(e WelcomeEmail) string {
	return fmt.Sprintf("Welcome, %s\n\nYour %s warranty for vehicle %s is now active.\nReference: %s\nCover runs until %s.\n",
		e.Name, e.Plan, e.Registration, e.Reference, e.EndDate.Format("2 January 2006"))
}

func discountHTML(code, description string) string {
	return fmt.Sprintf(`<html><body>
<h1>Here's your discount</h1>
<p>Use code <strong>%s</strong> at checkout. %s</p>
</body></html>`, code, description)
}

func discountText(code, description string) string {
	return fmt.Sprintf("Use code %s at checkout. %s\n", code, description)
}

func abandonedCartHTML(cart model.AbandonedCart) string {
	return fmt.Sprintf(`<html><body>
<h1>Your quote is still here</h1>
<p>You have %d warranty selection(s) totalling %s waiting in your basket.</p>
<p>Pick up where you left off whenever you're ready.</p>
</body></html>`, cart.ItemCount, poundsOf(cart.TotalPence))
}

func abandonedCartText(cart model.AbandonedCart) string {
	return fmt.Sprintf("You have %d warranty selection(s) totalling %s waiting in your basket.\n",
		cart.ItemCount, poundsOf(cart.TotalPence))
}
