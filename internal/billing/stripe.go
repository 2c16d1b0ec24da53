// AngelaMos | 2026
// stripe.go

package billing

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// StripeResolver resolves customers and products against the live
// Stripe API.
type StripeResolver struct {
	api *client.API
}

func NewStripeResolver(secretKey string) *StripeResolver {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeResolver{api: api}
}

func (r *StripeResolver) CustomerEmail(
	ctx context.Context,
	customerID string,
) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	customer, err := r.api.Customers.Get(customerID, params)
	if err != nil {
		return "", fmt.Errorf("get stripe customer %s: %w", customerID, err)
	}

	return customer.Email, nil
}

func (r *StripeResolver) ProductName(
	ctx context.Context,
	productID string,
) (string, error) {
	params := &stripe.ProductParams{}
	params.Context = ctx

	product, err := r.api.Products.Get(productID, params)
	if err != nil {
		return "", fmt.Errorf("get stripe product %s: %w", productID, err)
	}

	return product.Name, nil
}

var _ CustomerResolver = (*StripeResolver)(nil)
