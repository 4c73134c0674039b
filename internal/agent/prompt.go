package agent

import "fmt"

// BuildInstruction returns the task given to the network for one receipt.
func BuildInstruction(req Request) string {
	return fmt.Sprintf("Extract the key data from this pdf: %s. Once the data is extracted, save it to the database using the receiptId: %s. Once the receipt is successfully saved to the database you can terminate the agent process.",
		req.URL, req.ReceiptID)
}

const databaseSystemPrompt = "You are a helpful assistant that takes information regarding receipts and saves it to the database by calling the save-to-database tool exactly once with every field filled in."

const saveToolDescription = "Save the given data to the database."

// saveToolParameters is the JSON schema of the save-to-database tool.
const saveToolParameters = `{
  "type": "object",
  "properties": {
    "fileDisplayName": {"type": "string", "description": "The readable display name of the receipt to show in the UI. If the file name is not human readable, use this to give a more readable name."},
    "receiptId": {"type": "string", "description": "The ID of the receipt to update."},
    "merchantName": {"type": "string"},
    "merchantAddress": {"type": "string"},
    "merchantContact": {"type": "string"},
    "transactionDate": {"type": "string"},
    "transactionAmount": {"type": "string", "description": "The total amount of the transaction, summing all the items on the receipt."},
    "receiptSummary": {"type": "string", "description": "A human readable summary of the receipt including merchant, date, amount and currency, invoice and receipt numbers when present, and some key details about the items."},
    "currency": {"type": "string"},
    "items": {
      "type": "array",
      "description": "The items on the receipt with name, quantity, unit price and total price.",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "quantity": {"type": "number"},
          "unitPrice": {"type": "number"},
          "totalPrice": {"type": "number"}
        },
        "required": ["name", "quantity", "unitPrice", "totalPrice"]
      }
    }
  },
  "required": ["fileDisplayName", "receiptId", "merchantName", "merchantAddress", "merchantContact", "transactionDate", "transactionAmount", "receiptSummary", "currency", "items"]
}`
