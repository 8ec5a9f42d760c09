package api

// Service accessors group Client methods by resource.
// Each service embeds *Client, so the resource helpers see it as a Requester.

type AccountsService struct{ *Client }

type OrdersService struct{ *Client }

type ProductsService struct{ *Client }

type TokensService struct{ *Client }

type WebhooksService struct{ *Client }

type TwoFactorService struct{ *Client }

func (c *Client) Accounts() AccountsService {
	return AccountsService{c}
}

func (c *Client) Orders() OrdersService {
	return OrdersService{c}
}

func (c *Client) Products() ProductsService {
	return ProductsService{c}
}

func (c *Client) Tokens() TokensService {
	return TokensService{c}
}

func (c *Client) Webhooks() WebhooksService {
	return WebhooksService{c}
}

func (c *Client) TwoFactor() TwoFactorService {
	return TwoFactorService{c}
}
