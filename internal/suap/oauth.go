package suap

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// DefaultScopes are requested on every authorization.
var DefaultScopes = []string{"identificacao", "email", "documentos_pessoais"}

// Config holds the OAuth application registered on SUAP.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	APIURL       string
	RedirectURL  string
}

// OAuth runs the authorization-code flow against SUAP.
type OAuth struct {
	cfg    *oauth2.Config
	apiURL string
}

func NewOAuth(c Config) *OAuth {
	return &OAuth{
		apiURL: c.APIURL,
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       DefaultScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  c.AuthURL,
				TokenURL: c.TokenURL,
				// SUAP expects the client credentials in the form body.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// AuthCodeURL is the SUAP consent page the browser is sent to.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if _, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); !ok {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: RequestTimeout})
	}
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("suap token exchange: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("suap token exchange: empty access token")
	}
	return tok, nil
}

// Client returns an API client authorized with tok.
func (o *OAuth) Client(ctx context.Context, tok *oauth2.Token) *Client {
	hc := o.cfg.Client(ctx, tok)
	hc.Timeout = RequestTimeout
	return NewClient(o.apiURL, hc)
}
