package backend

import (
	"context"
	"net/http"

	"eara_connect_portal/internal/domain/country"

	"golang.org/x/sync/errgroup"
)

func (c *Client) Countries(ctx context.Context) ([]country.Country, error) {
	var out []country.Country
	if err := c.do(ctx, http.MethodGet, "/countries", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Country(ctx context.Context, id int64) (*country.Country, error) {
	var out country.Country
	if err := c.do(ctx, http.MethodGet, idPath("/countries/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCountry(ctx context.Context, d country.Draft) (*country.Country, error) {
	var out country.Country
	if err := c.do(ctx, http.MethodPost, "/countries", nil, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCountry(ctx context.Context, id int64, d country.Draft) (*country.Country, error) {
	var out country.Country
	if err := c.do(ctx, http.MethodPut, idPath("/countries/%d", id), nil, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCountry(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/countries/%d", id), nil, nil, nil)
}

// CountryMembers loads the commissioner generals and committee members of a country in parallel.
// Delegation secretaries are split out of the committee member list.
func (c *Client) CountryMembers(ctx context.Context, countryID int64) (*country.Members, error) {
	var (
		ctry       *country.Country
		generals   []country.Member
		committees []country.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ctry, err = c.Country(gctx, countryID)
		return err
	})
	g.Go(func() error {
		return c.do(gctx, http.MethodGet, idPath("/commissioner-generals/by-country/%d", countryID), nil, nil, &generals)
	})
	g.Go(func() error {
		return c.do(gctx, http.MethodGet, idPath("/country-committee-members/country/%d", countryID), nil, nil, &committees)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	members := &country.Members{Country: *ctry, CommissionerGenerals: generals}
	for _, m := range committees {
		if m.IsDelegationSecretary() {
			members.DelegationSecretaries = append(members.DelegationSecretaries, m)
			continue
		}
		members.CommitteeMembers = append(members.CommitteeMembers, m)
	}
	return members, nil
}

type revenueAuthorityRequest struct {
	Name    string     `json:"name"`
	Country *idPayload `json:"country"`
}

// idPayload is the {"id": n} reference the backend expects for associations.
type idPayload struct {
	ID int64 `json:"id"`
}

func ref(id int64) *idPayload {
	if id == 0 {
		return nil
	}
	return &idPayload{ID: id}
}

func (c *Client) RevenueAuthorities(ctx context.Context) ([]country.RevenueAuthority, error) {
	var out []country.RevenueAuthority
	if err := c.do(ctx, http.MethodGet, "/revenue-authorities", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RevenueAuthoritiesByCountry(ctx context.Context, countryID int64) ([]country.RevenueAuthority, error) {
	var out []country.RevenueAuthority
	if err := c.do(ctx, http.MethodGet, idPath("/revenue-authorities/country/%d", countryID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRevenueAuthority(ctx context.Context, d country.RevenueAuthorityDraft) (*country.RevenueAuthority, error) {
	var out country.RevenueAuthority
	body := revenueAuthorityRequest{Name: d.Name, Country: ref(d.CountryID)}
	if err := c.do(ctx, http.MethodPost, "/revenue-authorities", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRevenueAuthority(ctx context.Context, id int64, d country.RevenueAuthorityDraft) (*country.RevenueAuthority, error) {
	var out country.RevenueAuthority
	body := revenueAuthorityRequest{Name: d.Name, Country: ref(d.CountryID)}
	if err := c.do(ctx, http.MethodPut, idPath("/revenue-authorities/%d", id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRevenueAuthority(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/revenue-authorities/%d", id), nil, nil, nil)
}
