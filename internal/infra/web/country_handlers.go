package web

import (
	"context"
	"fmt"
	"net/http"

	"eara_connect_portal/internal/app"
	"eara_connect_portal/internal/domain/country"
	"eara_connect_portal/internal/infra/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type countryListView struct {
	Countries []country.Country
}

type countryDetailView struct {
	Country     *country.Country
	Members     app.Section[*country.Members]
	Authorities app.Section[[]country.RevenueAuthority]
}

type countryFormView struct {
	CountryID int64
	Draft     country.Draft
}

func (s *Server) handleCountries(c *gin.Context) {
	list, err := s.svc.Countries.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, "countries", "Member countries", countryListView{Countries: list})
}

// handleCountryDetail loads the members and revenue authorities side by side; either may fail alone.
func (s *Server) handleCountryDetail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Country")
		return
	}
	ctx := c.Request.Context()
	cn, err := s.svc.Countries.Get(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}

	view := countryDetailView{Country: cn}
	var g errgroup.Group
	g.Go(func() error {
		m, err := s.svc.Countries.Members(ctx, id)
		view.Members = app.Section[*country.Members]{Data: m, Err: err}
		return nil
	})
	g.Go(func() error {
		ras, err := s.svc.Countries.RevenueAuthorities(ctx, id)
		view.Authorities = app.Section[[]country.RevenueAuthority]{Data: ras, Err: err}
		return nil
	})
	_ = g.Wait()
	for _, err := range []error{view.Members.Err, view.Authorities.Err} {
		if err != nil {
			s.log.WithField("country_id", id).WithError(err).Warn("Country section failed to load")
		}
	}
	s.render(c, "country_detail", cn.Name, view)
}

func countryDraftFromForm(c *gin.Context) country.Draft {
	return country.Draft{
		Name:    c.PostForm("name"),
		IsoCode: c.PostForm("isoCode"),
		Email:   c.PostForm("email"),
	}
}

func (s *Server) handleCountryForm(c *gin.Context) {
	s.render(c, "country_form", "New country", countryFormView{})
}

func (s *Server) handleCountryCreate(c *gin.Context) {
	d := countryDraftFromForm(c)
	cn, err := s.svc.Countries.Create(c.Request.Context(), *currentUser(c), d)
	if err != nil {
		if msgs := app.ValidationMessages(err); msgs != nil {
			s.renderStatus(c, http.StatusUnprocessableEntity, "country_form", "New country", countryFormView{Draft: d}, msgs)
			return
		}
		s.failBack(c, err, "/countries/new")
		return
	}
	s.flash(c, session.FlashSuccess, cn.Name+" added.")
	s.redirect(c, fmt.Sprintf("/countries/%d", cn.ID))
}

func (s *Server) handleCountryEditForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Country")
		return
	}
	cn, err := s.svc.Countries.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	d := country.Draft{Name: cn.Name, IsoCode: cn.IsoCode, Email: cn.Email}
	s.render(c, "country_form", "Edit "+cn.Name, countryFormView{CountryID: id, Draft: d})
}

func (s *Server) handleCountryUpdate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Country")
		return
	}
	d := countryDraftFromForm(c)
	if _, err := s.svc.Countries.Update(c.Request.Context(), *currentUser(c), id, d); err != nil {
		if msgs := app.ValidationMessages(err); msgs != nil {
			s.renderStatus(c, http.StatusUnprocessableEntity, "country_form", "Edit country", countryFormView{CountryID: id, Draft: d}, msgs)
			return
		}
		s.failBack(c, err, fmt.Sprintf("/countries/%d/edit", id))
		return
	}
	s.flash(c, session.FlashSuccess, "Country updated.")
	s.redirect(c, fmt.Sprintf("/countries/%d", id))
}

func (s *Server) handleCountryDelete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Country")
		return
	}
	if err := s.svc.Countries.Delete(c.Request.Context(), *currentUser(c), id); err != nil {
		s.failBack(c, err, fmt.Sprintf("/countries/%d", id))
		return
	}
	s.flash(c, session.FlashSuccess, "Country deleted.")
	s.redirect(c, "/countries")
}

func (s *Server) handleAuthorityCreate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Country")
		return
	}
	d := country.RevenueAuthorityDraft{Name: c.PostForm("name"), CountryID: id}
	s.authorityAction(c, fmt.Sprintf("/countries/%d", id), "Revenue authority added.", func(ctx context.Context) error {
		_, err := s.svc.Countries.CreateRevenueAuthority(ctx, *currentUser(c), d)
		return err
	})
}

func (s *Server) handleAuthorityUpdate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Revenue authority")
		return
	}
	d := country.RevenueAuthorityDraft{Name: c.PostForm("name"), CountryID: formInt64(c, "countryId")}
	s.authorityAction(c, authorityBack(c), "Revenue authority updated.", func(ctx context.Context) error {
		_, err := s.svc.Countries.UpdateRevenueAuthority(ctx, *currentUser(c), id, d)
		return err
	})
}

func (s *Server) handleAuthorityDelete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Revenue authority")
		return
	}
	s.authorityAction(c, authorityBack(c), "Revenue authority deleted.", func(ctx context.Context) error {
		return s.svc.Countries.DeleteRevenueAuthority(ctx, *currentUser(c), id)
	})
}

// authorityBack is the country page an authority form was posted from.
func authorityBack(c *gin.Context) string {
	if cid := formInt64(c, "countryId"); cid != 0 {
		return fmt.Sprintf("/countries/%d", cid)
	}
	return "/countries"
}

func (s *Server) authorityAction(c *gin.Context, back, success string, fn func(context.Context) error) {
	if err := fn(c.Request.Context()); err != nil {
		s.failBack(c, err, back)
		return
	}
	s.flash(c, session.FlashSuccess, success)
	s.redirect(c, back)
}
