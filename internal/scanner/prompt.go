package scanner

// ReceiptPrompt is the extraction instruction sent alongside the document.
const ReceiptPrompt = `Extract the data from the receipt and return the structured output as follows:
{
    "merchant": {
        "name": "Store Name",
        "address": "123 Main St, City, Country",
        "contact": "+123654789"
    },
    "transaction": {
        "date": "YYYY-MM-DD",
        "receipt_number": "ABC123654",
        "payment_method": "Credit Card"
    },
    "items": [
        {
            "name": "Item 1",
            "quantity": 2,
            "unit_price": 10.00,
            "total_price": 20.00
        }
    ],
    "totals": {
        "subtotal": 20.00,
        "tax": 2.00,
        "total": 22.00,
        "currency": "USD"
    }
}

Return ONLY valid JSON with no markdown formatting and no explanation.
Normalize dates to YYYY-MM-DD and use ISO 4217 currency codes.
If a field is not present on the receipt, use an empty string for text and 0 for numbers.`

// ScanningSystemPrompt describes the role of the scanning agent.
const ScanningSystemPrompt = `You are an AI powered receipt scanning assistant. Your primary role is to accurately extract and structure relevant information from scanned receipts, including:
* Merchant information: store name, address, contact details
* Transaction details: date, time, receipt number, payment method
* Itemized purchases: product name, quantities, individual price, discounts
* Totals: subtotal, taxes, total paid and any applied discounts
Correct OCR errors where possible, normalize dates and currency values, and indicate incomplete data when key details are missing.`
