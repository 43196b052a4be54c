package collector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ecocap/internal/browser"
	"ecocap/internal/config"
	"ecocap/internal/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// Portal page selectors.
const (
	selLoggedIn     = ".username-company"
	selSearchIcon   = ".search_Icon"
	selSearchInput  = "div.search_input_box input"
	xpProviderTab   = "//div[contains(@class, 'ivu-tabs-tab') and contains(text(), '能力提供方')]"
	selSearchResult = ".goods-item"
	selCompanyTitle = ".company-title"
	xpNextPage      = "//li[contains(@class, 'ivu-page-next') and not(contains(@class, 'ivu-page-disabled'))]"
	xpAbilityTotal  = "//div[contains(@class, 'hx-product-left-select-result')]/span"
	selAbilityTitle = ".goods-content-title"
	selContactIcon  = ".message-back"
	xpLoginDialog   = "//div[contains(@class, 'login_box-button')]"
	selIntroduction = ".buyDetailText"
	selHighlightT   = ".HighlightTitle"
	selHighlightC   = ".HighlightContent"
)

// Waits that do not follow the configured element timeout.
const (
	listTimeout     = 15 * time.Second
	nextPageTimeout = 5 * time.Second
	contactTimeout  = time.Second
	specTimeout     = 5 * time.Second
)

func xpSpec(label string) string {
	return fmt.Sprintf("//span[contains(@class, 'product-specification-label') and text()='%s']"+
		"/following-sibling::span[contains(@class, 'product-specification-span')]", label)
}

func xpContact(label, tag string) string {
	return fmt.Sprintf("//div[@class='message-list modal-class']/div[text()='%s']"+
		"/following-sibling::div[@class='text']//%s[@class='modal-text']", label, tag)
}

// RodPortal drives the portal in a Chrome window through go-rod. Abilities
// and companies open in new tabs, which are adopted by the session manager
// and closed once read.
type RodPortal struct {
	sm       *browser.SessionManager
	cfg      config.CollectorConfig
	operator *Operator
	pacer    *Pacer
	home     string
}

// NewRodPortal returns a portal over sm. The home page opens on first use.
func NewRodPortal(sm *browser.SessionManager, cfg config.CollectorConfig, operator *Operator) *RodPortal {
	return &RodPortal{
		sm:       sm,
		cfg:      cfg,
		operator: operator,
		pacer:    NewPacer(cfg.MinPauseMs, cfg.MaxPauseMs),
	}
}

func (p *RodPortal) homePage(ctx context.Context) (*rod.Page, error) {
	if p.home == "" {
		s, err := p.sm.CreateSession(ctx, p.cfg.PortalURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open portal: %w", err)
		}
		p.home = s.ID
		logging.Collector("Opened portal %s", p.cfg.PortalURL)
	}
	page, ok := p.sm.Page(p.home)
	if !ok {
		return nil, fmt.Errorf("portal session %s is gone", p.home)
	}
	return page.Context(ctx), nil
}

// returnHome reloads the portal home page in the search tab.
func (p *RodPortal) returnHome(ctx context.Context, cause error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s, ok := p.sm.GetSession(p.home); ok {
		logging.CollectorWarn("Search unavailable on %s, reloading the home page: %v", s.URL, cause)
	}
	if err := p.sm.Navigate(ctx, p.home, p.cfg.PortalURL); err != nil {
		return fmt.Errorf("failed to reload portal: %w", err)
	}
	return nil
}

// EnsureLogin looks for the logged-in marker and otherwise waits for the
// operator.
func (p *RodPortal) EnsureLogin(ctx context.Context) error {
	page, err := p.homePage(ctx)
	if err != nil {
		return err
	}
	if _, err := page.Timeout(p.cfg.GetLoginTimeout()).Element(selLoggedIn); err == nil {
		logging.Collector("Portal session already logged in")
		return nil
	}
	return p.operator.WaitForOK(ctx, "Not logged in or home page incomplete: log in in the browser window")
}

// OpenCompany searches for name, selects the exact match among the provider
// results and opens its ability listing.
func (p *RodPortal) OpenCompany(ctx context.Context, name string) (Listing, error) {
	page, err := p.homePage(ctx)
	if err != nil {
		return nil, err
	}
	wait := p.cfg.GetElementTimeout()

	if err := p.sm.Click(ctx, p.home, selSearchIcon); err != nil {
		if err := p.returnHome(ctx, err); err != nil {
			return nil, err
		}
		if err := p.sm.Click(ctx, p.home, selSearchIcon); err != nil {
			return nil, fmt.Errorf("search icon: %w", err)
		}
	}
	if err := p.pacer.Pause(ctx); err != nil {
		return nil, err
	}
	if err := p.sm.Type(ctx, p.home, selSearchInput, name); err != nil {
		return nil, fmt.Errorf("search input: %w", err)
	}
	if err := p.pacer.Pause(ctx); err != nil {
		return nil, err
	}
	box, err := page.Timeout(wait).Element(selSearchInput)
	if err != nil {
		return nil, fmt.Errorf("search input: %w", err)
	}
	if err := box.Type(input.Enter); err != nil {
		return nil, fmt.Errorf("submit search: %w", err)
	}

	tab, err := page.Timeout(listTimeout).ElementX(xpProviderTab)
	if err != nil {
		return nil, fmt.Errorf("provider tab: %w", err)
	}
	if _, err := page.Timeout(wait).Element(selSearchResult); err != nil {
		return nil, fmt.Errorf("search results: %w", err)
	}
	if err := p.pacer.Pause(ctx); err != nil {
		return nil, err
	}
	if err := tab.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, fmt.Errorf("provider tab: %w", err)
	}

	company, err := p.findCompany(ctx, page, name)
	if err != nil {
		return nil, err
	}
	if err := p.pacer.Pause(ctx); err != nil {
		return nil, err
	}
	listPage, err := p.openTab(page, company)
	if err != nil {
		return nil, fmt.Errorf("open listing of %s: %w", name, err)
	}
	s := p.sm.Adopt(listPage, "")
	logging.CollectorDebug("Listing of %s open in session %s", name, s.ID)
	return &rodListing{portal: p, session: s.ID, page: listPage.Context(ctx)}, nil
}

// findCompany walks the provider result pages until a title equals name.
func (p *RodPortal) findCompany(ctx context.Context, page *rod.Page, name string) (*rod.Element, error) {
	for n := 1; ; n++ {
		if _, err := page.Timeout(p.cfg.GetElementTimeout()).Element(selCompanyTitle); err != nil {
			return nil, fmt.Errorf("%w: result page %d did not load", ErrCompanyNotFound, n)
		}
		if err := p.pacer.Pause(ctx); err != nil {
			return nil, err
		}
		titles, err := page.Elements(selCompanyTitle)
		if err != nil {
			return nil, err
		}
		for _, el := range titles {
			// innerText includes the highlighted <font> parts Text skips.
			v, err := el.Property("innerText")
			if err != nil {
				continue
			}
			if strings.TrimSpace(v.Str()) == name {
				logging.CollectorDebug("Found %s on result page %d", name, n)
				return el, nil
			}
		}
		more, err := p.nextPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if !more {
			return nil, fmt.Errorf("%w: %s (%d result pages)", ErrCompanyNotFound, name, n)
		}
	}
}

func (p *RodPortal) nextPage(ctx context.Context, page *rod.Page) (bool, error) {
	next, err := page.Timeout(nextPageTimeout).ElementX(xpNextPage)
	if err != nil {
		return false, nil
	}
	if err := p.pacer.Pause(ctx); err != nil {
		return false, err
	}
	if err := next.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, nil
	}
	return true, nil
}

// openTab clicks el and returns the tab it opens.
func (p *RodPortal) openTab(page *rod.Page, el *rod.Element) (*rod.Page, error) {
	wait := page.Timeout(p.cfg.GetElementTimeout()).WaitOpen()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, err
	}
	return wait()
}

func text(el *rod.Element, err error) string {
	if err != nil {
		return Missing
	}
	s, err := el.Text()
	if err != nil {
		return Missing
	}
	if s = strings.TrimSpace(s); s == "" {
		return Missing
	}
	return s
}

func texts(page *rod.Page, selector string, timeout time.Duration) []string {
	if _, err := page.Timeout(timeout).Element(selector); err != nil {
		return nil
	}
	els, err := page.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(els))
	for _, el := range els {
		s, err := el.Text()
		if err != nil {
			continue
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

// extract reads an ability detail tab. The contact dialog must open for the
// ability to count; a login dialog in its place is handed to the operator.
func (p *RodPortal) extract(ctx context.Context, page *rod.Page, name string) (AbilityDetail, error) {
	d := AbilityDetail{Name: name}
	wait := p.cfg.GetElementTimeout()

	openContacts := func() error {
		icon, err := page.Timeout(listTimeout).Element(selContactIcon)
		if err != nil {
			return err
		}
		if err := p.pacer.Pause(ctx); err != nil {
			return err
		}
		return icon.Click(proto.InputMouseButtonLeft, 1)
	}
	if err := openContacts(); err != nil {
		if ctx.Err() != nil {
			return d, ctx.Err()
		}
		logging.CollectorWarn("Contact dialog of %s did not open: %v", name, err)
		d.Status = StatusFailed
		return d, nil
	}
	if _, err := page.Timeout(p.cfg.GetLoginTimeout()).ElementX(xpLoginDialog); err == nil {
		if err := p.operator.WaitForOK(ctx, "Portal login expired: log in again in the browser window"); err != nil {
			return d, err
		}
		if err := openContacts(); err != nil {
			logging.CollectorWarn("Contact dialog of %s did not open after login: %v", name, err)
			d.Status = StatusFailed
			return d, nil
		}
	}

	d.PreSales = text(page.Timeout(contactTimeout).ElementX(xpContact("售前电话", "div")))
	d.Support = text(page.Timeout(contactTimeout).ElementX(xpContact("技术支持电话", "div")))
	d.Service = text(page.Timeout(contactTimeout).ElementX(xpContact("客服电话", "span")))

	d.Introduction = text(page.Timeout(wait).Element(selIntroduction))
	d.Code = text(page.Timeout(wait).ElementX(xpSpec("能力编码")))
	d.ID = text(page.Timeout(wait).ElementX(xpSpec("能力ID")))
	d.Type = text(page.Timeout(specTimeout).ElementX(xpSpec("能力类型")))
	d.Subtype = text(page.Timeout(specTimeout).ElementX(xpSpec("细分类型")))
	cat := text(page.Timeout(specTimeout).ElementX(xpSpec("能力目录")))
	if cat == Missing {
		cat = ""
	}
	d.Catalogue = SplitCatalogue(cat)
	d.Listed = text(page.Timeout(specTimeout).ElementX(xpSpec("上架日期")))
	d.Updated = text(page.Timeout(specTimeout).ElementX(xpSpec("更新日期")))
	d.Highlights = Highlights(
		texts(page, selHighlightT, specTimeout),
		texts(page, selHighlightC, specTimeout),
	)
	return d, ctx.Err()
}

type rodListing struct {
	portal  *RodPortal
	session string
	page    *rod.Page
}

func (l *rodListing) Total(ctx context.Context) (int, error) {
	el, err := l.page.Context(ctx).Timeout(listTimeout).ElementX(xpAbilityTotal)
	if err != nil {
		return 0, fmt.Errorf("ability total: %w", err)
	}
	raw, err := el.Text()
	if err != nil {
		return 0, fmt.Errorf("ability total: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("ability total %q: %w", raw, err)
	}
	return n, nil
}

func (l *rodListing) titles(ctx context.Context) (rod.Elements, error) {
	page := l.page.Context(ctx)
	if _, err := page.Timeout(listTimeout).Element(selAbilityTitle); err != nil {
		return nil, fmt.Errorf("ability list: %w", err)
	}
	return page.Elements(selAbilityTitle)
}

func (l *rodListing) Names(ctx context.Context) ([]string, error) {
	els, err := l.titles(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(els))
	for _, el := range els {
		s, err := el.Text()
		if err != nil {
			return nil, err
		}
		names = append(names, strings.TrimSpace(s))
	}
	return names, nil
}

func (l *rodListing) Detail(ctx context.Context, name string) (AbilityDetail, error) {
	els, err := l.titles(ctx)
	if err != nil {
		return AbilityDetail{}, err
	}
	var target *rod.Element
	for _, el := range els {
		if s, err := el.Text(); err == nil && strings.TrimSpace(s) == name {
			target = el
			break
		}
	}
	if target == nil {
		return AbilityDetail{}, errors.New("ability no longer on the page")
	}

	tab, err := l.portal.openTab(l.page.Context(ctx), target)
	if err != nil {
		return AbilityDetail{}, fmt.Errorf("open detail: %w", err)
	}
	s := l.portal.sm.Adopt(tab, "")
	defer func() {
		if err := l.portal.sm.Release(s.ID); err != nil {
			logging.CollectorDebug("Closing detail tab of %s: %v", name, err)
		}
	}()
	logging.CollectorDebug("Reading ability %s", name)
	return l.portal.extract(ctx, tab.Context(ctx), name)
}

func (l *rodListing) Next(ctx context.Context) (bool, error) {
	return l.portal.nextPage(ctx, l.page.Context(ctx))
}

func (l *rodListing) Close() error {
	return l.portal.sm.Release(l.session)
}
