package llm_test

import (
	"strings"
	"testing"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/providers/llm"
)

var promptCatalog = []models.Product{
	{Name: "لابتوب ديل", Price: "750 دولار", Description: "كور i7"},
	{Name: "ساعة ذكية", Price: "100 دولار", Description: "مقاومة للماء"},
}

func TestConversationSystemCarriesCatalogAndGrammar(t *testing.T) {
	sys := llm.ConversationSystem(promptCatalog, &models.StoreProfile{
		Name:    "متجر بغداد",
		Address: "الكرادة",
	})

	for _, want := range []string{
		"متجر بغداد",
		"الكرادة",
		"لابتوب ديل: 750 دولار",
		"ساعة ذكية: 100 دولار",
		"===ORDER_INFO===",
		"===ORDER_PENDING===",
		"===END_ORDER===",
		"STATUS: CONFIRMED",
		"STATUS: WAITING_FOR_INFO",
	} {
		if !strings.Contains(sys, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if !strings.HasSuffix(sys, "الآن ستبدأ المحادثة الفعلية مع العميل:") {
		t.Error("system prompt must end with the conversation lead-in")
	}
}

func TestConversationSystemWithEmptyCatalog(t *testing.T) {
	sys := llm.ConversationSystem(nil, nil)
	if !strings.Contains(sys, "لا توجد منتجات متوفرة حالياً في المتجر.") {
		t.Error("empty catalog notice missing")
	}
	if strings.Contains(sys, "معلومات المتجر:") {
		t.Error("store block should be omitted for nil profile")
	}
}

func TestSinglePromptRendersHistoryRoles(t *testing.T) {
	p := llm.SinglePrompt("شنو عندكم؟", promptCatalog, []llm.Turn{
		{Role: "user", Content: "مرحبا"},
		{Role: "model", Content: "هلا بيك"},
	}, nil)

	if !strings.Contains(p, "العميل: مرحبا") {
		t.Error("customer turn not rendered")
	}
	if !strings.Contains(p, "المساعد: هلا بيك") {
		t.Error("assistant turn not rendered")
	}
	if !strings.Contains(p, "رسالة العميل الحالية: \"شنو عندكم؟\"") {
		t.Error("current message not rendered")
	}
	if !strings.Contains(p, "===ORDER_INFO===") {
		t.Error("directive grammar missing from single-shot prompt")
	}
}

func TestSinglePromptOmitsEmptyHistory(t *testing.T) {
	p := llm.SinglePrompt("مرحبا", nil, nil, nil)
	if strings.Contains(p, "المحادثة السابقة:") {
		t.Error("history header should be absent for first contact")
	}
}
