package http

import (
	"html/template"
	"net/http"

	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/models"
)

// The page mirrors the widget embed SMEPay documents: load checkout.js,
// open the widget with the slug, and send the buyer to the callback URL
// with the order id once the widget reports success.
var checkoutTmpl = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Pay with SMEPay</title>
  <script src="https://typof.co/smepay/checkout.js"></script>
</head>
<body>
  <button onclick="handleOpenSMEPay()">Pay Now with SMEPay</button>
  <script>
    function handleOpenSMEPay() {
      if (window.smepayCheckout) {
        window.smepayCheckout({
          slug: {{.Slug}},
          onSuccess: function (data) {
            window.location.href = {{.CallbackURL}} + '?order_id=' + encodeURIComponent(data.order_id);
          },
          onFailure: function () {
            alert("Payment failed or cancelled.");
          }
        });
      } else {
        alert("SMEPay widget not loaded.");
      }
    }
  </script>
</body>
</html>
`))

func renderCheckoutPage(w http.ResponseWriter, checkout *models.Checkout) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := checkoutTmpl.Execute(w, checkout); err != nil {
		http.Error(w, "checkout page render failed", http.StatusInternalServerError)
	}
}
