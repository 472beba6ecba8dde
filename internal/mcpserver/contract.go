package mcpserver

// RecordFormatContract describes the canonical record format that LLM
// consumers should follow when creating records.
const RecordFormatContract = `# Centavo Record Format Contract

Every finance record stored in Centavo MUST follow this structure.

## Structure

` + "```" + `json
{
  "type": "EXPENSE",                 // REQUIRED - see type enumeration below
  "date": "2025-05-02",              // ISO date (YYYY-MM-DD); required for dated types
  "description": "Groceries",
  "value": "84.30",                  // decimal as a string; never a float
  "category": "<id of a CATEGORY record>",
  "account": "<id of an ACCOUNT record>",
  "paymentMethod": "<id of a PAYMENT_METHOD record>",
  "status": "PENDING",               // PAYABLE/RECEIVABLE only: PENDING or PAID
  "billingDay": 15,                  // SUBSCRIPTION only: 1-31
  "active": true,                    // SUBSCRIPTION / SALARY_CONFIG only
  "notes": "free text"
}
` + "```" + `

## Rules

1. **` + "`" + `type` + "`" + ` is required** and must be one of: EXPENSE, INCOME, ACCOUNT,
   CATEGORY, PAYMENT_METHOD, PAYABLE, RECEIVABLE, BUDGET_DISTRIBUTION,
   SUBSCRIPTION, SALARY_CONFIG.
2. **Never send an ` + "`" + `id` + "`" + `.** Ids are assigned by the server; a submitted id
   is discarded.
3. **Reference fields** (` + "`" + `category` + "`" + `, ` + "`" + `account` + "`" + `, ` + "`" + `paymentMethod` + "`" + `) hold the id
   of another record. Use list_records to discover valid ids.
4. **` + "`" + `value` + "`" + ` is a decimal string** (e.g. "39.90"), not a JSON number.
5. **SUBSCRIPTION records** need ` + "`" + `billingDay` + "`" + ` (1-31) and ` + "`" + `active` + "`" + `. An
   active subscription automatically generates one EXPENSE per month on its
   billing day.
6. **SALARY_CONFIG records** need ` + "`" + `active` + "`" + `. An active salary config
   automatically generates one INCOME per month on the last business day.
7. **Do not create EXPENSE records for subscriptions by hand** - the
   generator owns those; duplicates within a month are skipped by
   (relatedId, month) matching.

## Persistence

Records live in memory and are flushed to a CSV file (or SQLite database) a
few seconds after the last change. There is no separate save step.
`
