package olx

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const searchPageCurrent = `<html><body>
<div data-cy="l-card">
  <a class="css-1tqlkj0" href="/d/obyavlenie/chevrolet-lacetti-2012-ID3aBc1.html"></a>
  <h4 class="css-1g61gc2">Lacetti 1.8 идеальное состояние</h4>
  <p data-testid="ad-price">95 000 000 сум</p>
  <p data-testid="location-date">Ташкент, Юнусабадский район - Сегодня в 04:32</p>
  <div class="css-1kfqt7f"><span class="css-6as4g5">2012 - 245 000 км</span></div>
</div>
<div data-cy="l-card">
  <a class="css-1tqlkj0" href="/d/obyavlenie/lacetti-gentra-ID3aBc2.html"></a>
  <h4 class="css-1g61gc2">Gentra вместо Lacetti</h4>
  <p data-testid="ad-price">120 000 000 сум</p>
  <p data-testid="location-date">Самарканд - 23 ноября 2024 г.</p>
  <div class="css-1kfqt7f"><span class="css-6as4g5">2016 - 80 000 км</span></div>
</div>
<div data-cy="l-card">
  <a class="css-1tqlkj0" href="/d/obyavlenie/shiny-r15-ID3aBc3.html"></a>
  <h4 class="css-1g61gc2">Шины для Lacetti R15</h4>
  <p data-testid="ad-price">1 200 000 сум</p>
  <p data-testid="location-date">Ташкент - 20 ноября 2024 г.</p>
</div>
<div data-cy="l-card">
  <h4 class="css-1g61gc2">Без ссылки</h4>
</div>
</body></html>`

const searchPageLegacy = `<html><body>
<div data-cy="l-card">
  <a class="css-qo0cxu" href="/d/obyavlenie/lacetti-ID9xx.html"></a>
  <h4 class="css-1s3qyje">Lacetti 2010</h4>
  <p class="css-13afqrm">70 000 000 сум</p>
  <p class="css-1mwdrlh">Бухара - 2 декабря 2024 г.</p>
  <span class="css-1cd0guq">2010 - 180 000 км</span>
</div>
</body></html>`

const detailPageLacetti = `<html><body>
<div data-testid="ad-parameters-container">
  <p>Частное лицо</p>
  <p>Модель: Lacetti</p>
  <p>Коробка передач: Механическая</p>
  <p>Цвет: Белый</p>
  <p>Вид топлива: Бензин</p>
  <p>Состояние машины: Отличное</p>
  <p>Тип кузова: Седан</p>
  <p>Количество хозяев: 2</p>
  <p>Доп. опции: Кондиционер, Электростеклоподъемники</p>
  <p>Руль: Левый</p>
</div>
<div data-cy="ad_description"><div>Машина в отличном состоянии.<br>Торг уместен.</div></div>
<h4 data-testid="user-profile-user-name">Азиз</h4>
<p data-testid="member-since">На OLX с января 2019 г.</p>
<p data-testid="lastSeenBox">Онлайн вчера в 21:10</p>
<a data-testid="user-profile-link" href="/list/user/abc123/">Все объявления</a>
</body></html>`

const detailPageGentra = `<html><body>
<div data-testid="ad-parameters-container">
  <p>Модель: Gentra</p>
  <p>Цвет: Черный</p>
</div>
<h4 data-testid="user-profile-user-name">Дилер</h4>
</body></html>`

const detailPageOddValues = `<html><body>
<div data-testid="ad-parameters-container">
  <p>Компания</p>
  <p>Модель: LACETTI</p>
  <p>Коробка передач: Полуавтомат</p>
  <p>Цвет: Чёрный</p>
  <p>Вид топлива: Водород</p>
  <p>Состояние машины: Как новая</p>
</div>
</body></html>`

// fakeFetcher serves canned pages by URL and records every request.
type fakeFetcher struct {
	pages    map[string]string
	requests []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	f.requests = append(f.requests, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, &FetchError{URL: url, Status: 404, Err: fmt.Errorf("not found")}
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

func mustDoc(body string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		panic(err)
	}
	return doc
}
