package app

import (
	"context"

	"eara_connect_portal/internal/domain/country"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/cache"

	"github.com/sirupsen/logrus"
)

const (
	countriesPrefix   = "countries:"
	authoritiesPrefix = "authorities:"
)

type CountryService struct {
	backend CountryBackend
	cache   *cache.QueryCache
	log     *logrus.Entry
}

func NewCountryService(b CountryBackend, c *cache.QueryCache, log *logrus.Entry) *CountryService {
	return &CountryService{backend: b, cache: c, log: log}
}

func (s *CountryService) List(ctx context.Context) ([]country.Country, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("countries", "all"), s.backend.Countries)
}

func (s *CountryService) Get(ctx context.Context, id int64) (*country.Country, error) {
	return s.backend.Country(ctx, id)
}

func (s *CountryService) Create(ctx context.Context, u user.SessionUser, d country.Draft) (*country.Country, error) {
	if !user.CanManageDirectory(u) {
		return nil, ErrForbidden
	}
	if errs := d.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}
	c, err := s.backend.CreateCountry(ctx, d)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(countriesPrefix)
	s.log.WithFields(logrus.Fields{"country_id": c.ID, "user_id": u.ID}).Info("Country created")
	return c, nil
}

func (s *CountryService) Update(ctx context.Context, u user.SessionUser, id int64, d country.Draft) (*country.Country, error) {
	if !user.CanManageDirectory(u) {
		return nil, ErrForbidden
	}
	if errs := d.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}
	c, err := s.backend.UpdateCountry(ctx, id, d)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(countriesPrefix)
	return c, nil
}

func (s *CountryService) Delete(ctx context.Context, u user.SessionUser, id int64) error {
	if !user.CanManageDirectory(u) {
		return ErrForbidden
	}
	if err := s.backend.DeleteCountry(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(countriesPrefix)
	s.cache.Invalidate(authoritiesPrefix)
	s.log.WithFields(logrus.Fields{"country_id": id, "user_id": u.ID}).Info("Country deleted")
	return nil
}

func (s *CountryService) Members(ctx context.Context, countryID int64) (*country.Members, error) {
	return s.backend.CountryMembers(ctx, countryID)
}

// RevenueAuthorities lists every authority, or only those of countryID when it is non-zero.
func (s *CountryService) RevenueAuthorities(ctx context.Context, countryID int64) ([]country.RevenueAuthority, error) {
	if countryID == 0 {
		return cache.Fetch(ctx, s.cache, cache.Key("authorities", "all"), s.backend.RevenueAuthorities)
	}
	return cache.Fetch(ctx, s.cache, cache.Key("authorities", "country", countryID), func(ctx context.Context) ([]country.RevenueAuthority, error) {
		return s.backend.RevenueAuthoritiesByCountry(ctx, countryID)
	})
}

func (s *CountryService) CreateRevenueAuthority(ctx context.Context, u user.SessionUser, d country.RevenueAuthorityDraft) (*country.RevenueAuthority, error) {
	if !user.CanManageDirectory(u) {
		return nil, ErrForbidden
	}
	if errs := d.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}
	ra, err := s.backend.CreateRevenueAuthority(ctx, d)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(authoritiesPrefix)
	return ra, nil
}

func (s *CountryService) UpdateRevenueAuthority(ctx context.Context, u user.SessionUser, id int64, d country.RevenueAuthorityDraft) (*country.RevenueAuthority, error) {
	if !user.CanManageDirectory(u) {
		return nil, ErrForbidden
	}
	if errs := d.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}
	ra, err := s.backend.UpdateRevenueAuthority(ctx, id, d)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(authoritiesPrefix)
	return ra, nil
}

func (s *CountryService) DeleteRevenueAuthority(ctx context.Context, u user.SessionUser, id int64) error {
	if !user.CanManageDirectory(u) {
		return ErrForbidden
	}
	if err := s.backend.DeleteRevenueAuthority(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(authoritiesPrefix)
	return nil
}
