package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"shopify-feed/internal/types"
)

type stubFetcher struct {
	pages map[string]string
	err   error
	calls []string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return "", f.err
	}
	return f.pages[url], nil
}

func newTestResolver(fetcher *stubFetcher, rules []types.ListingRule) *ListingResolver {
	return NewListingResolver(NewBaseAdapter(types.DefaultConfig(), logrus.New()), fetcher, rules)
}

func TestListingResolver_ResolvesFirstProduct(t *testing.T) {
	listing := "https://www.sstoncricket.com/all-products/bats.html"
	fetcher := &stubFetcher{pages: map[string]string{
		listing: `<ul><li><a class="product-item-link" href="/ton-reserve-edition.html">TON</a></li>
<li><a class="product-item-link" href="/other.html">Other</a></li></ul>`,
	}}

	got := newTestResolver(fetcher, DefaultListingRules).Resolve(context.Background(), listing)

	assert.Equal(t, "https://www.sstoncricket.com/ton-reserve-edition.html", got)
	assert.Equal(t, []string{listing}, fetcher.calls)
}

func TestListingResolver_NonListingUntouched(t *testing.T) {
	fetcher := &stubFetcher{}
	r := newTestResolver(fetcher, DefaultListingRules)

	link := "https://www.sstoncricket.com/ton-reserve-edition.html"
	assert.Equal(t, link, r.Resolve(context.Background(), link))

	other := "https://shop.teamsg.in/all-products/bats.html"
	assert.Equal(t, other, r.Resolve(context.Background(), other))
	assert.Empty(t, fetcher.calls)
}

func TestListingResolver_FailuresKeepLink(t *testing.T) {
	listing := "https://www.sstoncricket.com/all-products/bats.html"

	failing := &stubFetcher{err: errors.New("boom")}
	assert.Equal(t, listing, newTestResolver(failing, DefaultListingRules).Resolve(context.Background(), listing))

	empty := &stubFetcher{pages: map[string]string{listing: "<p>no products</p>"}}
	assert.Equal(t, listing, newTestResolver(empty, DefaultListingRules).Resolve(context.Background(), listing))
}

func TestListingResolver_InvalidRuleSkipped(t *testing.T) {
	r := newTestResolver(&stubFetcher{}, []types.ListingRule{{HostContains: "x.com", PathPattern: "(", LinkSelector: "a"}})

	assert.Empty(t, r.rules)
}
