package llm

import (
	"fmt"
	"strings"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
)

// The generator is a plain text->text collaborator; the whole storefront
// persona, catalog knowledge, and the order-directive grammar live in the
// prompt built here. The directive delimiters must stay bit-exact with what
// extract.ParseDirective consumes.

const directiveRules = `بالإضافة إلى ردك العادي، اتبع هذه القواعد للتعامل مع الطلبات:

1. إذا طلب العميل شراء منتج ولم يقدم معلوماته الشخصية بعد، اطلب منه هذه المعلومات وأضف في نهاية ردك:
===ORDER_PENDING===
PRODUCT_NAME: [اسم المنتج المطلوب]
QUANTITY: [الكمية المطلوبة، افتراضياً 1]
STATUS: WAITING_FOR_INFO
===END_ORDER===

2. إذا قدم العميل معلوماته الشخصية بعد طلب منتج (في رسالة منفصلة)، قم بتأكيد الطلب وأضف في نهاية ردك:
===ORDER_INFO===
PRODUCT_NAME: [اسم المنتج المطلوب]
QUANTITY: [الكمية المطلوبة، افتراضياً 1]
CUSTOMER_INFO: [معلومات العميل التي قدمها]
NOTES: [أي ملاحظات إضافية]
STATUS: CONFIRMED
===END_ORDER===

3. إذا قدم العميل طلب شراء مع معلوماته الشخصية في نفس الرسالة، قم بتأكيد الطلب مباشرة وأضف في نهاية ردك:
===ORDER_INFO===
PRODUCT_NAME: [اسم المنتج المطلوب]
QUANTITY: [الكمية المطلوبة، افتراضياً 1]
CUSTOMER_INFO: [معلومات العميل التي قدمها]
NOTES: [أي ملاحظات إضافية]
STATUS: CONFIRMED
===END_ORDER===

مثال 1:
إذا قال العميل "أريد شراء هاتف آيفون 15 برو"، فستطلب منه معلوماته وتضيف:
===ORDER_PENDING===
PRODUCT_NAME: هاتف آيفون 15 برو
QUANTITY: 1
STATUS: WAITING_FOR_INFO
===END_ORDER===

مثال 2:
إذا قال العميل بعد ذلك "اسمي أحمد، رقمي 07XXXXXXXX، وعنواني بغداد الكرادة"، فستؤكد الطلب وتضيف:
===ORDER_INFO===
PRODUCT_NAME: هاتف آيفون 15 برو
QUANTITY: 1
CUSTOMER_INFO: اسمي أحمد، رقمي 07XXXXXXXX، وعنواني بغداد الكرادة
NOTES:
STATUS: CONFIRMED
===END_ORDER===`

const personaInstructions = `تعليمات مهمة:
1. قم بالرد على العميل باللهجة العراقية الدارجة، استخدم كلمات مثل (هلا، شلونك، شنو، هواية، اي، بعد، ماكو، اكو) وغيرها من الكلمات العراقية.
2. تصرف كأنك صاحب المتجر أو موظف فيه، وليس كذكاء اصطناعي.
3. عندما يسأل العميل عن اسم المتجر أو عنوانه، استخدم المعلومات المذكورة أعلاه.
4. عندما يسأل العميل عن المنتجات المتوفرة، اذكر له المنتجات من القائمة أعلاه بالتفصيل.
5. عندما يسأل عن منتج معين أو سعر، قدم له المعلومات الدقيقة من قائمة المنتجات أعلاه.
6. إذا لم يكن المنتج المطلوب موجوداً، اقترح منتجات مشابهة من القائمة.
7. إذا كان السؤال غير متعلق بالمنتجات، أجب بشكل عام ولطيف.
8. تذكر المحادثة السابقة واستمر في نفس السياق.
9. لا تقل أبداً أنك نموذج لغوي أو ذكاء اصطناعي، بل تصرف كصاحب المتجر أو موظف فيه.
10. استخدم عبارات ترحيبية عراقية مثل "هلا بيك"، "نورتنا"، "تدلل"، "آمرني"، "خدمة".
11. عند الحديث عن الأسعار، يمكنك استخدام عبارات مثل "سعره زين"، "سعر حلو"، "سعر مناسب".
12. عند وصف المنتجات، استخدم عبارات مثل "يجنن"، "خرافي"، "ممتاز"، "حلو هواية".
13. إذا طلب العميل شراء منتج أو أبدى رغبته في الشراء، اطلب منه معلوماته الشخصية (الاسم، رقم الهاتف، العنوان) إذا لم يقدمها بالفعل.`

const assistantRole = "أنت مساعد للرد على استفسارات العملاء باللهجة العراقية في متجر إلكتروني. يجب أن تكون ودوداً ومهذباً ومفيداً."

func storeContext(store *models.StoreProfile) string {
	if store == nil || (store.Name == "" && store.Address == "" && store.Description == "") {
		return ""
	}
	var b strings.Builder
	b.WriteString("معلومات المتجر:\n")
	if store.Name != "" {
		fmt.Fprintf(&b, "اسم المتجر: %s\n", store.Name)
	}
	if store.Address != "" {
		fmt.Fprintf(&b, "عنوان المتجر: %s\n", store.Address)
	}
	if store.Description != "" {
		fmt.Fprintf(&b, "وصف المتجر: %s\n", store.Description)
	}
	b.WriteString("\n")
	return b.String()
}

func productContext(products []models.Product) string {
	if len(products) == 0 {
		return "لا توجد منتجات متوفرة حالياً في المتجر."
	}
	var b strings.Builder
	b.WriteString("المنتجات المتوفرة لدينا في المتجر:\n")
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s: %s - %s\n", i+1, p.Name, p.Price, p.Description)
	}
	b.WriteString("\nأنت تعمل كمساعد للرد على استفسارات العملاء في متجرنا. يجب عليك الإجابة على أسئلة العملاء حول هذه المنتجات بدقة.")
	return b.String()
}

// ConversationSystem builds the system text sent as the opening turn of a
// multi-turn generation.
func ConversationSystem(products []models.Product, store *models.StoreProfile) string {
	var b strings.Builder
	b.WriteString(assistantRole)
	b.WriteString("\n\n")
	b.WriteString(storeContext(store))
	b.WriteString(productContext(products))
	b.WriteString("\n\n")
	b.WriteString(personaInstructions)
	b.WriteString("\n\n")
	b.WriteString(directiveRules)
	b.WriteString("\n\nالآن ستبدأ المحادثة الفعلية مع العميل:")
	return b.String()
}

// SinglePrompt builds the one-shot prompt: full context, prior history
// rendered inline, and the current customer message.
func SinglePrompt(message string, products []models.Product, history []Turn, store *models.StoreProfile) string {
	var b strings.Builder
	b.WriteString(assistantRole)
	b.WriteString("\n\n")
	b.WriteString(storeContext(store))
	b.WriteString(productContext(products))
	b.WriteString("\n\n")

	if len(history) > 0 {
		b.WriteString("المحادثة السابقة:\n")
		for _, t := range history {
			role := "المساعد"
			if t.Role == "user" {
				role = "العميل"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, t.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "رسالة العميل الحالية: \"%s\"\n\n", message)
	b.WriteString(personaInstructions)
	b.WriteString("\n\n")
	b.WriteString(directiveRules)
	return b.String()
}
