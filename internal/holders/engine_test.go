package holders

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/pkg/models"
)

// nodeFixture is a fake Node API backing the engine tests. Boxes are served
// in pages from the unspent index, tokens from the token index.
type nodeFixture struct {
	tokens       map[string]models.Token
	unspentBoxes map[string][]models.Box // tokenID -> boxes
	allBoxes     map[string][]models.Box
	failUnspent  map[string]bool // tokenID -> fail every page request
	bareArrays   bool            // serve bare arrays instead of {items,total}
}

func (f *nodeFixture) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/blockchain/token/byId/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/blockchain/token/byId/"):]
		token, ok := f.tokens[id]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(token)
	})
	mux.HandleFunc("/blockchain/box/unspent/byTokenId/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/blockchain/box/unspent/byTokenId/"):]
		if f.failUnspent[id] {
			http.Error(w, "index unavailable", http.StatusServiceUnavailable)
			return
		}
		f.writePage(w, r, f.unspentBoxes[id])
	})
	mux.HandleFunc("/blockchain/box/byTokenId/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/blockchain/box/byTokenId/"):]
		f.writePage(w, r, f.allBoxes[id])
	})
	return mux
}

func (f *nodeFixture) writePage(w http.ResponseWriter, r *http.Request, boxes []models.Box) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if offset > len(boxes) {
		offset = len(boxes)
	}
	end := offset + limit
	if end > len(boxes) {
		end = len(boxes)
	}
	page := boxes[offset:end]
	if f.bareArrays {
		json.NewEncoder(w).Encode(page)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"items": page, "total": len(boxes)})
}

func testEngine(t *testing.T, fixture *nodeFixture) *Engine {
	t.Helper()
	server := httptest.NewServer(fixture.handler())
	t.Cleanup(server.Close)
	client := ergo.NewClient(ergo.UpstreamConfig{}, ergo.UpstreamConfig{BaseURL: server.URL})
	return NewEngine(client)
}

func tokenBox(id string, address string, tokenID string, amount int64) models.Box {
	return models.Box{
		BoxID:   id,
		Address: address,
		Value:   1000000,
		Assets:  []models.Asset{{TokenID: tokenID, Amount: amount}},
	}
}

func TestTokenDistribution_AggregatesAcrossPages(t *testing.T) {
	// 150 boxes across 3 addresses force two pages at the default size.
	boxes := make([]models.Box, 0, 150)
	for i := 0; i < 150; i++ {
		addr := fmt.Sprintf("addr%d", i%3)
		boxes = append(boxes, tokenBox(fmt.Sprintf("box%d", i), addr, "tok1", 2))
	}
	fixture := &nodeFixture{
		tokens:       map[string]models.Token{"tok1": {ID: "tok1", Name: "TestCoin", Decimals: 0}},
		unspentBoxes: map[string][]models.Box{"tok1": boxes},
	}
	engine := testEngine(t, fixture)

	report, err := engine.TokenDistribution(context.Background(), "tok1")

	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if report.TotalSupply != 300 {
		t.Errorf("Expected total supply 300. Got: %d", report.TotalSupply)
	}
	if report.TotalHolders != 3 {
		t.Errorf("Expected 3 holders. Got: %d", report.TotalHolders)
	}
	if report.Partial {
		t.Error("Expected a complete walk, not a partial report")
	}
}

func TestTokenDistribution_BareArrayNodeShape(t *testing.T) {
	fixture := &nodeFixture{
		tokens: map[string]models.Token{"tok1": {ID: "tok1", Name: "TestCoin"}},
		unspentBoxes: map[string][]models.Box{"tok1": {
			tokenBox("b1", "addrA", "tok1", 600),
			tokenBox("b2", "addrB", "tok1", 400),
		}},
		bareArrays: true,
	}
	engine := testEngine(t, fixture)

	report, err := engine.TokenDistribution(context.Background(), "tok1")

	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if report.TotalSupply != 1000 {
		t.Errorf("Expected total supply 1000 from the bare-array shape. Got: %d", report.TotalSupply)
	}
	if math.Abs(report.Gini-0.2) > 0.0001 {
		t.Errorf("Expected Gini 0.2. Got: %f", report.Gini)
	}
}

func TestTokenDistribution_ToleratesMalformedAssetAmount(t *testing.T) {
	// One box carries a fractional amount; it must count as zero without
	// failing the page it arrived on.
	mux := http.NewServeMux()
	mux.HandleFunc("/blockchain/token/byId/tok1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.Token{ID: "tok1", Name: "TestCoin"})
	})
	mux.HandleFunc("/blockchain/box/unspent/byTokenId/tok1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[
			{"boxId":"b1","address":"addrA","value":1,"assets":[{"tokenId":"tok1","amount":600}]},
			{"boxId":"b2","address":"addrB","value":1,"assets":[{"tokenId":"tok1","amount":400.5}]}
		],"total":2}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := ergo.NewClient(ergo.UpstreamConfig{}, ergo.UpstreamConfig{BaseURL: server.URL})
	engine := NewEngine(client)

	report, err := engine.TokenDistribution(context.Background(), "tok1")

	if err != nil {
		t.Fatalf("Expected the walk to survive the malformed amount. Got: %v", err)
	}
	if report.Partial {
		t.Error("Expected a complete report")
	}
	if report.TotalSupply != 600 {
		t.Errorf("Expected only the well-formed box counted. Got: %d", report.TotalSupply)
	}
	if report.TotalHolders != 1 {
		t.Errorf("Expected 1 holder. Got: %d", report.TotalHolders)
	}
}

func TestTokenDistribution_UnknownToken(t *testing.T) {
	engine := testEngine(t, &nodeFixture{tokens: map[string]models.Token{}})

	_, err := engine.TokenDistribution(context.Background(), "missing")

	if !ergo.IsNotFound(err) {
		t.Errorf("Expected not_found for an unknown token. Got: %v", err)
	}
}

func TestTokenDistribution_PartialOnWalkError(t *testing.T) {
	fixture := &nodeFixture{
		tokens:       map[string]models.Token{"tok1": {ID: "tok1", Name: "TestCoin"}},
		unspentBoxes: map[string][]models.Box{"tok1": {}},
		failUnspent:  map[string]bool{"tok1": true},
	}
	engine := testEngine(t, fixture)

	report, err := engine.TokenDistribution(context.Background(), "tok1")

	if report == nil {
		t.Fatal("Expected a report alongside the partial-result error")
	}
	if !report.Partial {
		t.Error("Expected the report to be flagged partial")
	}
	apiErr := ergo.AsAPIError(err)
	if apiErr == nil || apiErr.Kind != ergo.KindPartialResult {
		t.Errorf("Expected partial_result kind. Got: %v", err)
	}
}

func TestResolveCollection_SiblingAssets(t *testing.T) {
	// Member NFTs are minted in boxes that also carry the collection token.
	fixture := &nodeFixture{
		tokens: map[string]models.Token{"coll": {ID: "coll", Name: "Gnomes"}},
		allBoxes: map[string][]models.Box{"coll": {
			{BoxID: "m1", Address: "issuer", Assets: []models.Asset{
				{TokenID: "coll", Amount: 1},
				{TokenID: "nft1", Amount: 1},
			}},
			{BoxID: "m2", Address: "issuer", Assets: []models.Asset{
				{TokenID: "coll", Amount: 1},
				{TokenID: "nft2", Amount: 1},
			}},
			{BoxID: "m3", Address: "issuer", Assets: []models.Asset{
				{TokenID: "coll", Amount: 1},
				{TokenID: "nft1", Amount: 1}, // duplicate sighting
			}},
		}},
	}
	engine := testEngine(t, fixture)

	members, err := engine.ResolveCollection(context.Background(), "coll")

	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("Expected 2 unique members. Got: %v", members)
	}
	if members[0] != "nft1" || members[1] != "nft2" {
		t.Errorf("Expected first-seen order [nft1 nft2]. Got: %v", members)
	}
}

func TestCollectionDistribution_MergesMembers(t *testing.T) {
	fixture := &nodeFixture{
		tokens: map[string]models.Token{"coll": {ID: "coll", Name: "Gnomes", Description: "garden gnomes"}},
		allBoxes: map[string][]models.Box{"coll": {
			{BoxID: "m1", Assets: []models.Asset{{TokenID: "coll", Amount: 1}, {TokenID: "nft1", Amount: 1}}},
			{BoxID: "m2", Assets: []models.Asset{{TokenID: "coll", Amount: 1}, {TokenID: "nft2", Amount: 1}}},
		}},
		unspentBoxes: map[string][]models.Box{
			"nft1": {tokenBox("u1", "whale", "nft1", 1)},
			"nft2": {tokenBox("u2", "whale", "nft2", 1)},
		},
	}
	engine := testEngine(t, fixture)

	report, err := engine.CollectionDistribution(context.Background(), "coll")

	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if report.Collection == nil {
		t.Fatal("Expected the collection descriptor on the report")
	}
	if report.Collection.TokenCount != 2 {
		t.Errorf("Expected 2 member tokens. Got: %d", report.Collection.TokenCount)
	}
	if report.TotalHolders != 1 {
		t.Errorf("Expected a single merged holder. Got: %d", report.TotalHolders)
	}
	if report.Holders[0].Amount != 2 {
		t.Errorf("Expected the holder to own both members. Got: %d", report.Holders[0].Amount)
	}
}

func TestCollectionDistribution_NoMembers(t *testing.T) {
	fixture := &nodeFixture{
		tokens:   map[string]models.Token{"coll": {ID: "coll", Name: "Empty"}},
		allBoxes: map[string][]models.Box{"coll": {}},
	}
	engine := testEngine(t, fixture)

	_, err := engine.CollectionDistribution(context.Background(), "coll")

	if !ergo.IsNotFound(err) {
		t.Errorf("Expected not_found for a collection with no members. Got: %v", err)
	}
}
