// Package session logs the client in and out of the portal.
//
// Login state lives on the portal, keyed by client IP. It is queried fresh on
// every call and each transition is confirmed by querying it again, since the
// portal may accept a request and silently ignore it.
package session

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"iitb-internet/internal/metrics"
	"iitb-internet/internal/model"
	"iitb-internet/internal/portal"
	"iitb-internet/internal/scrape"
)

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, form url.Values) (*portal.Result, error)
}

type Pages interface {
	LoginURL(ctx context.Context) string
	LogoutURL(ctx context.Context) string
}

type Controller struct {
	fetcher Fetcher
	pages   Pages
	logger  *zap.Logger
}

func New(fetcher Fetcher, pages Pages, logger *zap.Logger) *Controller {
	return &Controller{fetcher: fetcher, pages: pages, logger: logger.Named("session")}
}

// Status reports whether this client is logged in, and as whom.
func (c *Controller) Status(ctx context.Context) (model.LoginStatus, error) {
	res, err := c.fetcher.Fetch(ctx, c.pages.LoginURL(ctx), nil)
	if err != nil {
		return model.LoginStatus{}, errors.Wrap(err, "status")
	}

	if !portal.IsAuthenticatedPage(res.FinalURL) {
		if c.logger.Core().Enabled(zap.DebugLevel) {
			text, _ := res.Text()
			c.logger.Debug("Not on logout page",
				zap.String("final_url", res.FinalURL), zap.String("title", scrape.Title(text)))
		}
		return model.LoginStatus{}, nil
	}

	text, err := res.Text()
	if err != nil {
		return model.LoginStatus{}, errors.Wrap(err, "status")
	}
	user, err := scrape.ExtractUser(text)
	if err != nil {
		return model.LoginStatus{}, errors.Wrapf(err, "status: malformed data received from %s", res.FinalURL)
	}
	ip, err := scrape.ExtractIP(text)
	if err != nil {
		return model.LoginStatus{}, errors.Wrapf(err, "status: malformed data received from %s", res.FinalURL)
	}
	return model.LoginStatus{LoggedIn: true, User: user, IP: ip}, nil
}

func (c *Controller) Logout(ctx context.Context) (model.Outcome, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return model.Outcome{}, err
	}
	if !status.LoggedIn {
		return c.done("logout", model.Outcome{Message: "Cannot logout. Not logged in."}), nil
	}

	form := url.Values{"ip": {status.IP}, "button": {"Logout"}}
	if _, err := c.fetcher.Fetch(ctx, c.pages.LogoutURL(ctx), form); err != nil {
		return model.Outcome{}, errors.Wrap(err, "logout")
	}

	after, err := c.Status(ctx)
	if err != nil {
		return model.Outcome{}, err
	}
	if after.LoggedIn {
		return c.done("logout", model.Outcome{
			Message: fmt.Sprintf("Logout failed. Still logged in as %s.", status.User),
			User:    status.User,
			IP:      status.IP,
		}), nil
	}
	return c.done("logout", model.Outcome{
		Succeeded: true,
		Message:   fmt.Sprintf("Successfully logged out %s.", status.User),
		User:      status.User,
		IP:        status.IP,
	}), nil
}

func (c *Controller) Login(ctx context.Context, username, password string) (model.Outcome, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return model.Outcome{}, err
	}
	if status.LoggedIn {
		return c.done("login", model.Outcome{
			Message: fmt.Sprintf("Already logged in as %s.", status.User),
			User:    status.User,
			IP:      status.IP,
		}), nil
	}

	form := url.Values{"uname": {username}, "passwd": {password}}
	res, err := c.fetcher.Fetch(ctx, c.pages.LoginURL(ctx), form)
	if err != nil {
		return model.Outcome{}, errors.Wrap(err, "login")
	}
	text, err := res.Text()
	if err != nil {
		return model.Outcome{}, errors.Wrap(err, "login")
	}

	switch {
	case scrape.IsBanned(text):
		return c.done("login", model.Outcome{Message: "Login not required.", User: username}), nil
	case scrape.IsBadPassword(text):
		return c.done("login", model.Outcome{Message: "Login failed. Password incorrect.", User: username}), nil
	}

	after, err := c.Status(ctx)
	if err != nil {
		return model.Outcome{}, err
	}
	if !after.LoggedIn {
		return c.done("login", model.Outcome{Message: "Login failed due to unknown error.", User: username}), nil
	}
	return c.done("login", model.Outcome{
		Succeeded: true,
		Message:   fmt.Sprintf("Successfully logged in as %s.", after.User),
		User:      after.User,
		IP:        after.IP,
	}), nil
}

func (c *Controller) done(action string, out model.Outcome) model.Outcome {
	result := "failed"
	if out.Succeeded {
		result = "ok"
	}
	metrics.Actions.WithLabelValues(action, result).Inc()
	c.logger.Info("Portal action finished",
		zap.String("action", action), zap.Bool("succeeded", out.Succeeded), zap.String("user", out.User))
	return out
}
