package mysql

// Tenant filter is part of every statement; never drop it.
const aggregateRevenueSQL = `
SELECT
  property_id,
  SUM(total_amount) AS total_revenue,
  COUNT(*)          AS reservation_count
FROM reservations
WHERE property_id = ? AND tenant_id = ?
GROUP BY property_id
`

const listPropertiesSQL = `
SELECT id, name
FROM properties
WHERE tenant_id = ?
ORDER BY id
`
